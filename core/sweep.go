package core

import (
	"fmt"
	"log"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"golang.org/x/sync/errgroup"

	"github.com/fundbuilder/saver/alloc"
	"github.com/fundbuilder/saver/contracts"
	ex "github.com/fundbuilder/saver/extensions"
	"github.com/fundbuilder/saver/frame"
	"github.com/fundbuilder/saver/returns"
	"github.com/fundbuilder/saver/stats"
)

const (
	SweepWorkers = 8
)

// WindowSweep analyzes every monthly window from one month up to MaxMonths
// over the stored closes of a symbol, so the window length's effect on the
// return distribution can be charted in one request.
func (sc *ServiceContext) WindowSweep(req *contracts.SweepRequest) (*contracts.SweepResponse, error) {
	start := time.Now()

	md, err := sc.PostgresConnection.GetMetadataBySymbol(sc.Context, req.Symbol)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, fmt.Errorf("%w: %s has never been synced", ErrUnknownSymbol, req.Symbol)
	}

	closes, err := sc.PostgresConnection.GetCloses(sc.Context, req.Symbol, req.From, req.To)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, len(closes))
	values := make([]float64, len(closes))
	for i, c := range closes {
		dates[i] = c.Timestamp
		values[i] = c.Close
	}

	rec, err := frame.FromCloses(req.Column, dates, values)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	limit, skipped := feasibleMonths(len(closes), req.MaxMonths)
	if limit == 0 {
		return nil, fmt.Errorf("%w: need at least %d prices, got %d", returns.ErrInsufficientData, returns.TradingDaysPerMonth, len(closes))
	}

	windows, err := sc.sweepWindows(rec, req, limit)
	if err != nil {
		return nil, err
	}

	log.Printf("swept %d windows for %s in %s", len(windows), req.Symbol, time.Since(start))

	return &contracts.SweepResponse{
		Symbol:        md.Symbol,
		Column:        req.Column,
		Points:        len(closes),
		Windows:       windows,
		SkippedMonths: skipped,
	}, nil
}

// feasibleMonths caps a sweep at the longest window the series can fill.
// Months beyond the cap are reported as skipped rather than failing the
// whole sweep.
func feasibleMonths(rows int, maxMonths int) (int, []int) {
	limit := ex.Min(rows/returns.TradingDaysPerMonth, maxMonths)

	skipped := make([]int, 0)
	for m := limit + 1; m <= maxMonths; m++ {
		skipped = append(skipped, m)
	}

	return limit, skipped
}

// sweepWindows fans the windows out over a small worker pool. The workers
// share the input record read-only and each writes its own result slot, so
// no locking is needed.
func (sc *ServiceContext) sweepWindows(rec arrow.Record, req *contracts.SweepRequest, limit int) ([]*contracts.SweepWindow, error) {
	res := make([]*contracts.SweepWindow, limit)
	nWorkers := ex.Min(SweepWorkers, limit)

	jobsChannel := make(chan int, limit)
	for m := 1; m <= limit; m++ {
		jobsChannel <- m
	}
	close(jobsChannel)

	g, ctx := errgroup.WithContext(sc.Context)
	for range nWorkers {
		g.Go(func() error {
			for months := range jobsChannel {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				window, err := analyzeWindow(rec, req, months)
				if err != nil {
					return fmt.Errorf("error analyzing %d month window: %w", months, err)
				}
				res[months-1] = window
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return res, nil
}

func analyzeWindow(rec arrow.Record, req *contracts.SweepRequest, months int) (*contracts.SweepWindow, error) {
	k := returns.MonthsToTradingDays(months)

	out, err := returns.CalculateRollingReturns(rec, req.Column, k)
	if err != nil {
		return nil, err
	}
	defer out.Release()

	rets, err := frame.FloatValues(out, returns.ReturnColumnName(req.Column, k))
	if err != nil {
		return nil, err
	}

	if err := checkFinite(rets); err != nil {
		return nil, err
	}

	summary, err := stats.Describe(rets)
	if err != nil {
		return nil, err
	}

	allocation, err := alloc.ComputeOptimalAllocation(rets, float64(months), req.LossTolerance, req.VarPercentile.Float64, req.RiskFreeRate.Float64)
	if err != nil {
		return nil, err
	}

	returnWindowsComputed.Inc()

	return &contracts.SweepWindow{
		Months:     months,
		WindowDays: k,
		RowCount:   len(rets),
		Summary:    summary,
		Allocation: allocation,
	}, nil
}

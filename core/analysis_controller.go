package core

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/guregu/null/v6"

	"github.com/fundbuilder/saver/alloc"
	"github.com/fundbuilder/saver/contracts"
	"github.com/fundbuilder/saver/frame"
	m "github.com/fundbuilder/saver/models"
	"github.com/fundbuilder/saver/returns"
	"github.com/fundbuilder/saver/stats"
)

var (
	ErrUnknownSymbol = errors.New("unknown symbol")

	// the rolling return math follows IEEE 754, but json cannot carry the
	// infinities a zero price produces
	ErrNonFiniteReturns = errors.New("returns contain non-finite values")
)

// AnalyzeReturns runs one rolling-return analysis: resolve the price series,
// compute the windowed returns, then summarize, bin and size the allocation.
// Analyses over stored symbols are recorded as return runs.
func (sc *ServiceContext) AnalyzeReturns(req *contracts.AnalyzeRequest) (*contracts.AnalyzeResponse, error) {
	start := time.Now()

	rec, sourceId, err := sc.resolveSeries(req)
	if err != nil {
		return nil, err
	}
	defer rec.Release()

	out, err := returns.CalculateRollingReturns(rec, req.Column, req.WindowDays)
	if err != nil {
		return nil, err
	}
	defer out.Release()

	returnColumn := returns.ReturnColumnName(req.Column, req.WindowDays)
	rets, err := frame.FloatValues(out, returnColumn)
	if err != nil {
		return nil, fmt.Errorf("error reading result column: %w", err)
	}
	// the values alias the record's buffer, which dies with the record
	rets = slices.Clone(rets)

	if err := checkFinite(rets); err != nil {
		return nil, err
	}

	summary, err := stats.Describe(rets)
	if err != nil {
		return nil, err
	}

	hist, err := stats.ComputeHistogram(rets, req.Bins)
	if err != nil {
		return nil, err
	}

	// a near-flat series has no usable density estimate, the rest of the
	// analysis still stands
	var density *stats.DensityCurve
	if curve, kdeErr := stats.KDE(rets, req.CurvePoints); kdeErr == nil {
		density = &curve
	} else {
		log.Printf("skipping density estimate: %v", kdeErr)
	}

	months := float64(req.WindowDays) / returns.TradingDaysPerMonth
	allocation, err := alloc.ComputeOptimalAllocation(rets, months, req.LossTolerance, req.VarPercentile.Float64, req.RiskFreeRate.Float64)
	if err != nil {
		return nil, err
	}

	res := &contracts.AnalyzeResponse{
		Symbol:       req.Symbol,
		Column:       req.Column,
		ReturnColumn: returnColumn,
		WindowDays:   req.WindowDays,
		Returns:      rets,
		Summary:      summary,
		Histogram:    hist,
		Density:      density,
		Allocation:   allocation,
	}

	if sourceId != 0 {
		run := &m.ReturnRun{
			SourceId:      sourceId,
			ColumnName:    req.Column,
			WindowDays:    int32(req.WindowDays),
			RowCount:      int32(len(rets)),
			MeanReturn:    summary.Mean,
			StdDev:        summary.StdDev,
			VarPercentile: req.VarPercentile.Float64,
			ValueAtRisk:   allocation.ReturnAtPercentile,
			MarketWeight:  allocation.MarketWeight,
		}
		if err := sc.PostgresConnection.InsertReturnRun(sc.Context, run); err != nil {
			return nil, err
		}
		res.RunId = null.Int32From(run.Id)
	}

	returnWindowsComputed.Inc()
	log.Printf("analyzed %s over a %d day window, %d returns in %s", req.Column, req.WindowDays, len(rets), time.Since(start))

	return res, nil
}

// resolveSeries builds the price record to analyze, from inline prices or
// from the stored closes of a symbol. A non-zero source id means the series
// is store-backed and the analysis should be recorded.
func (sc *ServiceContext) resolveSeries(req *contracts.AnalyzeRequest) (arrow.Record, int32, error) {
	if len(req.Prices) > 0 {
		rec, err := frame.SingleColumnRecord(req.Column, req.Prices)
		if err != nil {
			return nil, 0, err
		}
		return rec, 0, nil
	}

	md, err := sc.PostgresConnection.GetMetadataBySymbol(sc.Context, req.Symbol)
	if err != nil {
		return nil, 0, err
	}
	if md == nil {
		return nil, 0, fmt.Errorf("%w: %s has never been synced", ErrUnknownSymbol, req.Symbol)
	}

	closes, err := sc.PostgresConnection.GetCloses(sc.Context, req.Symbol, req.From, req.To)
	if err != nil {
		return nil, 0, err
	}

	dates := make([]time.Time, len(closes))
	values := make([]float64, len(closes))
	for i, c := range closes {
		dates[i] = c.Timestamp
		values[i] = c.Close
	}

	rec, err := frame.FromCloses(req.Column, dates, values)
	if err != nil {
		return nil, 0, err
	}

	return rec, md.Id, nil
}

// GetSeriesSummary describes the stored closes of one symbol. A synced
// symbol with nothing in the requested range answers with zero points.
func (sc *ServiceContext) GetSeriesSummary(symbol string, from, to null.Time) (*contracts.SeriesSummaryResponse, error) {
	md, err := sc.PostgresConnection.GetMetadataBySymbol(sc.Context, symbol)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, fmt.Errorf("%w: %s has never been synced", ErrUnknownSymbol, symbol)
	}

	closes, err := sc.PostgresConnection.GetCloses(sc.Context, symbol, from, to)
	if err != nil {
		return nil, err
	}

	res := &contracts.SeriesSummaryResponse{
		Symbol:        md.Symbol,
		LastRefreshed: md.LastRefreshed,
		Points:        len(closes),
	}

	if len(closes) > 0 {
		values := make([]float64, len(closes))
		for i, c := range closes {
			values[i] = c.Close
		}

		summary, err := stats.Describe(values)
		if err != nil {
			return nil, err
		}

		res.Start = closes[0].Timestamp
		res.End = closes[len(closes)-1].Timestamp
		res.Close = summary
	}

	return res, nil
}

func (sc *ServiceContext) GetReturnRuns(symbol string) (*contracts.ReturnRunsResponse, error) {
	md, err := sc.PostgresConnection.GetMetadataBySymbol(sc.Context, symbol)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, fmt.Errorf("%w: %s has never been synced", ErrUnknownSymbol, symbol)
	}

	runs, err := sc.PostgresConnection.GetReturnRunsBySymbol(sc.Context, symbol)
	if err != nil {
		return nil, err
	}

	return &contracts.ReturnRunsResponse{
		Symbol: md.Symbol,
		Runs:   runs,
	}, nil
}

func checkFinite(values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: window %d is %v, check for zero prices", ErrNonFiniteReturns, i, v)
		}
	}
	return nil
}

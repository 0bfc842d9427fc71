package core

import (
	"errors"
	"fmt"
	"log"
	"time"

	av "github.com/fundbuilder/saver/api/alphavantage"
	ex "github.com/fundbuilder/saver/extensions"
	m "github.com/fundbuilder/saver/models"
)

var (
	// ErrRecentlyRefreshed means the symbol was synced inside the refresh
	// interval and the market data api was not called.
	ErrRecentlyRefreshed = errors.New("recently refreshed")

	// ErrMarketDataUnavailable wraps any failure talking to the market data
	// api, from transport errors to its polite rejection payloads.
	ErrMarketDataUnavailable = errors.New("market data unavailable")
)

const refreshIntervalDays = 7

// SyncSymbolSeries pulls the daily series for symbol from the market data
// api and stores whatever bars are newer than what we already hold. Returns
// the provider's last-refreshed date and the number of bars inserted.
func (sc *ServiceContext) SyncSymbolSeries(symbol string) (time.Time, int64, error) {
	md, err := sc.PostgresConnection.GetMetadataBySymbol(sc.Context, symbol)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("error determining if metadata exists in sync: %w", err)
	}

	if md == nil {
		log.Printf("adding new symbol to db: %s", symbol)
		md = &m.SeriesMetadata{
			Symbol:        symbol,
			LastRefreshed: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		if err := sc.PostgresConnection.InsertNewMetadata(sc.Context, md, nil); err != nil {
			return time.Time{}, 0, fmt.Errorf("error adding %s to db: %w", symbol, err)
		}
	}

	cutoffDate := time.Now().AddDate(0, 0, -refreshIntervalDays)
	if md.LastRefreshed.After(cutoffDate) {
		return md.LastRefreshed, 0, fmt.Errorf("%w: %s was refreshed on %s, will not sync", ErrRecentlyRefreshed, symbol, ex.FmtShort(md.LastRefreshed))
	}

	mostRecent, err := sc.PostgresConnection.GetMostRecentTimestampForSymbol(sc.Context, symbol)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("error getting most recent bar for symbol %s: %w", symbol, err)
	}

	res, err := sc.MarketDataClient.StockTimeSeries(sc.Context, av.TimeSeriesDaily, symbol)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", ErrMarketDataUnavailable, err)
	}

	// only keep bars newer than the newest one already stored
	f := func(p *m.SeriesPoint) bool { return !mostRecent.Valid || p.Timestamp.After(mostRecent.Time) }
	toInsert := ex.FilterMultiplePtr(res.Points, f)
	for _, p := range toInsert {
		p.SourceId = md.Id
	}

	tx, err := sc.PostgresConnection.GetTransaction(sc.Context)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(sc.Context) // this will kick off if we return before committing

	var inserted int64
	if len(toInsert) > 0 {
		inserted, err = sc.PostgresConnection.InsertSeriesData(sc.Context, toInsert, &tx)
		if err != nil {
			return time.Time{}, 0, fmt.Errorf("error inserting series data: %w", err)
		}
	}

	if err := sc.PostgresConnection.UpdateLastRefreshedDate(sc.Context, md.Id, res.Metadata.LastRefreshed, &tx); err != nil {
		return time.Time{}, 0, err
	}

	if err := tx.Commit(sc.Context); err != nil {
		return time.Time{}, 0, fmt.Errorf("error committing sync transaction for symbol %s: %w", symbol, err)
	}

	symbolsSynced.Inc()
	log.Printf("symbol %s got %d bars from alpha vantage, inserted %d new", symbol, len(res.Points), inserted)

	return res.Metadata.LastRefreshed, inserted, nil
}

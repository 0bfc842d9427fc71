package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// SeriesResult is what a market data provider hands back for one symbol:
// the series metadata plus every bar it returned.
type SeriesResult struct {
	Metadata *SeriesMetadata
	Points   []*SeriesPoint
}

type SeriesMetadata struct {
	Id            int32     `db:"id"`
	Symbol        string    `db:"symbol"`
	LastRefreshed time.Time `db:"last_refreshed"`

	// provider-side detail, not persisted
	TimeZone string `db:"-"`
}

// SeriesPoint is one daily bar. Providers leave fields they do not serve
// null, the adjusted columns in particular.
type SeriesPoint struct {
	SourceId       int32      `db:"source_id"`
	Timestamp      time.Time  `db:"timestamp"`
	Open           null.Float `db:"open"`
	High           null.Float `db:"high"`
	Low            null.Float `db:"low"`
	Close          null.Float `db:"close"`
	Volume         null.Float `db:"volume"`
	AdjustedClose  null.Float `db:"adjusted_close"`
	DividendAmount null.Float `db:"dividend_amount"`
}

// ClosePoint is the slim projection the return math runs on: bars with a
// non-null close, oldest first.
type ClosePoint struct {
	Timestamp time.Time `db:"timestamp"`
	Close     float64   `db:"close"`
}

package contracts

import (
	"time"

	"github.com/guregu/null/v6"

	"github.com/fundbuilder/saver/alloc"
	"github.com/fundbuilder/saver/models"
	"github.com/fundbuilder/saver/stats"
)

type PingResponse struct {
	Message string `json:"message"`
}

type SyncResponse struct {
	Symbol        string    `json:"symbol"`
	LastRefreshed time.Time `json:"lastRefreshed"`
	Inserted      int64     `json:"inserted"`
}

// SeriesSummaryResponse describes the stored close series of one symbol.
type SeriesSummaryResponse struct {
	Symbol        string        `json:"symbol"`
	LastRefreshed time.Time     `json:"lastRefreshed"`
	Points        int           `json:"points"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	Close         stats.Summary `json:"close"`
}

// AnalyzeResponse carries the rolling returns for one window plus everything
// derived from them. Density is omitted when the series is too degenerate to
// estimate.
type AnalyzeResponse struct {
	Symbol       string    `json:"symbol,omitempty"`
	Column       string    `json:"column"`
	ReturnColumn string    `json:"returnColumn"`
	WindowDays   int       `json:"windowDays"`
	Returns      []float64 `json:"returns"`

	Summary    stats.Summary          `json:"summary"`
	Histogram  stats.Histogram        `json:"histogram"`
	Density    *stats.DensityCurve    `json:"density,omitempty"`
	Allocation alloc.MarketAllocation `json:"allocation"`

	RunId null.Int32 `json:"runId"`
}

// SweepWindow is one window of a sweep, summarized without the raw returns to
// keep multi-window payloads small.
type SweepWindow struct {
	Months     int                    `json:"months"`
	WindowDays int                    `json:"windowDays"`
	RowCount   int                    `json:"rowCount"`
	Summary    stats.Summary          `json:"summary"`
	Allocation alloc.MarketAllocation `json:"allocation"`
}

type SweepResponse struct {
	Symbol  string         `json:"symbol"`
	Column  string         `json:"column"`
	Points  int            `json:"points"`
	Windows []*SweepWindow `json:"windows"`

	// months whose window exceeds the stored series
	SkippedMonths []int `json:"skippedMonths,omitempty"`
}

type ReturnRunsResponse struct {
	Symbol string              `json:"symbol"`
	Runs   []*models.ReturnRun `json:"runs"`
}

package contracts

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/guregu/null/v6"

	"github.com/fundbuilder/saver/alloc"
	"github.com/fundbuilder/saver/returns"
)

const (
	DefaultPriceColumn   = "close"
	DefaultHistogramBins = 50
	DefaultCurvePoints   = 200
	DefaultSweepMonths   = 24
)

// AnalyzeRequest asks for a rolling-return analysis over either a stored
// symbol or an inline price series. Exactly one of Symbol and Prices must be
// set. The window comes from Months (converted at 21 trading days per month)
// or directly from WindowDays.
type AnalyzeRequest struct {
	Symbol string    `json:"symbol"`
	Prices []float64 `json:"prices"`
	Column string    `json:"column"`

	Months     int `json:"months"`
	WindowDays int `json:"windowDays"`

	// bounds on the stored series, ignored for inline prices
	From null.Time `json:"from"`
	To   null.Time `json:"to"`

	VarPercentile null.Float `json:"varPercentile"`
	LossTolerance float64    `json:"lossTolerance"`
	RiskFreeRate  null.Float `json:"riskFreeRate"`

	Bins        int `json:"bins"`
	CurvePoints int `json:"curvePoints"`
}

func (req *AnalyzeRequest) Bind(r *http.Request) error {
	if req.Symbol == "" && len(req.Prices) == 0 {
		return errors.New("either symbol or prices must be provided")
	}
	if req.Symbol != "" && len(req.Prices) > 0 {
		return errors.New("symbol and prices are mutually exclusive")
	}

	if req.WindowDays == 0 {
		if req.Months < 1 {
			return errors.New("either months or windowDays must be at least 1")
		}
		req.WindowDays = returns.MonthsToTradingDays(req.Months)
	} else if req.WindowDays < 1 {
		return fmt.Errorf("windowDays must be at least 1, got %d", req.WindowDays)
	}

	req.applyDefaults()
	return nil
}

func (req *AnalyzeRequest) applyDefaults() {
	if req.Column == "" {
		req.Column = DefaultPriceColumn
	}
	if !req.VarPercentile.Valid {
		req.VarPercentile = null.FloatFrom(alloc.DefaultVarPercentile)
	}
	if !req.RiskFreeRate.Valid {
		req.RiskFreeRate = null.FloatFrom(alloc.DefaultRiskFreeRate)
	}
	if req.Bins == 0 {
		req.Bins = DefaultHistogramBins
	}
	if req.CurvePoints == 0 {
		req.CurvePoints = DefaultCurvePoints
	}
}

// SweepRequest asks for the same analysis repeated over every monthly window
// from one month up to MaxMonths.
type SweepRequest struct {
	Symbol string `json:"symbol"`
	Column string `json:"column"`

	MaxMonths int `json:"maxMonths"`

	From null.Time `json:"from"`
	To   null.Time `json:"to"`

	VarPercentile null.Float `json:"varPercentile"`
	LossTolerance float64    `json:"lossTolerance"`
	RiskFreeRate  null.Float `json:"riskFreeRate"`
}

func (req *SweepRequest) Bind(r *http.Request) error {
	if req.Symbol == "" {
		return errors.New("symbol must be provided")
	}
	if req.MaxMonths < 0 {
		return fmt.Errorf("maxMonths must be positive, got %d", req.MaxMonths)
	}

	if req.Column == "" {
		req.Column = DefaultPriceColumn
	}
	if req.MaxMonths == 0 {
		req.MaxMonths = DefaultSweepMonths
	}
	if !req.VarPercentile.Valid {
		req.VarPercentile = null.FloatFrom(alloc.DefaultVarPercentile)
	}
	if !req.RiskFreeRate.Valid {
		req.RiskFreeRate = null.FloatFrom(alloc.DefaultRiskFreeRate)
	}
	return nil
}

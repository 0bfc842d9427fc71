// Package alloc sizes a two-sleeve portfolio, market against risk-free, so
// the holding-period return at a chosen percentile matches the caller's loss
// tolerance.
package alloc

import (
	"fmt"
	"math"

	"github.com/fundbuilder/saver/stats"
)

const (
	DefaultRiskFreeRate  = 0.03
	DefaultVarPercentile = 5.0
)

// MarketAllocation is the solved split plus the inputs that shaped it.
type MarketAllocation struct {
	VarPercentile        float64 `json:"varPercentile"`
	ReturnAtPercentile   float64 `json:"returnAtPercentile"`
	RiskFreePeriodReturn float64 `json:"riskFreePeriodReturn"`
	MarketWeight         float64 `json:"marketWeight"`
	RiskFreeWeight       float64 `json:"riskFreeWeight"`
	ExpectedReturn       float64 `json:"expectedReturn"`
}

// ComputeOptimalAllocation solves for the market weight w where
// w*retAtPct + (1-w)*rfPeriod = tolerance, with retAtPct the market return at
// the given percentile of marketReturns and rfPeriod the risk-free rate
// compounded over months. The weight is clamped to [0, 1]; when the market
// percentile return equals the risk-free return there is nothing to solve and
// the allocation goes fully risk-free.
func ComputeOptimalAllocation(marketReturns []float64, months, tolerance, varPercentile, riskFreeRate float64) (MarketAllocation, error) {
	if months <= 0 {
		return MarketAllocation{}, fmt.Errorf("holding period must be positive, got %v months", months)
	}

	retAtPct, err := stats.Percentile(marketReturns, varPercentile)
	if err != nil {
		return MarketAllocation{}, err
	}

	rfPeriod := math.Pow(1+riskFreeRate, months/12) - 1

	var w float64
	if denom := retAtPct - rfPeriod; denom != 0 {
		w = (tolerance - rfPeriod) / denom
	}
	w = math.Max(0, math.Min(1, w))

	return MarketAllocation{
		VarPercentile:        varPercentile,
		ReturnAtPercentile:   retAtPct,
		RiskFreePeriodReturn: rfPeriod,
		MarketWeight:         w,
		RiskFreeWeight:       1 - w,
		ExpectedReturn:       w*retAtPct + (1-w)*rfPeriod,
	}, nil
}

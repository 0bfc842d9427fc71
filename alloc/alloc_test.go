package alloc

import (
	"math"
	"testing"

	ex "github.com/fundbuilder/saver/extensions"
)

// twenty returns whose 5th percentile lands on the single worst value
func worstCaseReturns(worst float64) []float64 {
	returns := make([]float64, 20)
	returns[0] = worst
	for i := 1; i < 20; i++ {
		returns[i] = 0.01 * float64(i)
	}
	return returns
}

func TestComputeOptimalAllocationSolvesTheMidpoint(t *testing.T) {
	// worst case -10%, risk-free ~3% over a year, tolerance halfway between
	a, err := ComputeOptimalAllocation(worstCaseReturns(-0.10), 12, -0.035, 5, 0.03)
	if err != nil {
		t.Fatalf("failed to compute allocation: %v", err)
	}

	ex.AssertAreEqual(t, "return at percentile", -0.10, a.ReturnAtPercentile)
	ex.AssertInDelta(t, "market weight", 0.5, a.MarketWeight, 1e-9)
	ex.AssertInDelta(t, "risk-free weight", 0.5, a.RiskFreeWeight, 1e-9)
	ex.AssertInDelta(t, "expected return", -0.035, a.ExpectedReturn, 1e-9)
}

func TestComputeOptimalAllocationClampsAboveOne(t *testing.T) {
	// tolerating more loss than the worst case caps the market sleeve at 100%
	a, err := ComputeOptimalAllocation(worstCaseReturns(-0.10), 12, -0.20, 5, 0.03)
	if err != nil {
		t.Fatalf("failed to compute allocation: %v", err)
	}

	ex.AssertAreEqual(t, "market weight", 1.0, a.MarketWeight)
	ex.AssertAreEqual(t, "risk-free weight", 0.0, a.RiskFreeWeight)
	ex.AssertAreEqual(t, "expected return", a.ReturnAtPercentile, a.ExpectedReturn)
}

func TestComputeOptimalAllocationClampsBelowZero(t *testing.T) {
	// demanding more than the risk-free return permits means no market sleeve
	a, err := ComputeOptimalAllocation(worstCaseReturns(-0.10), 12, 0.05, 5, 0.03)
	if err != nil {
		t.Fatalf("failed to compute allocation: %v", err)
	}

	ex.AssertAreEqual(t, "market weight", 0.0, a.MarketWeight)
	ex.AssertAreEqual(t, "risk-free weight", 1.0, a.RiskFreeWeight)
	ex.AssertAreEqual(t, "expected return", a.RiskFreePeriodReturn, a.ExpectedReturn)
}

func TestComputeOptimalAllocationDegenerateMarket(t *testing.T) {
	// every return equals the risk-free period return, so nothing to solve
	flat := []float64{0.5, 0.5, 0.5, 0.5}

	a, err := ComputeOptimalAllocation(flat, 12, -0.05, 5, 0.5)
	if err != nil {
		t.Fatalf("failed to compute allocation: %v", err)
	}

	ex.AssertAreEqual(t, "market weight", 0.0, a.MarketWeight)
	ex.AssertAreEqual(t, "expected return", 0.5, a.ExpectedReturn)
}

func TestComputeOptimalAllocationCompoundsShortPeriods(t *testing.T) {
	a, err := ComputeOptimalAllocation(worstCaseReturns(-0.10), 6, -0.035, 5, 0.03)
	if err != nil {
		t.Fatalf("failed to compute allocation: %v", err)
	}

	ex.AssertInDelta(t, "risk-free period return", math.Pow(1.03, 0.5)-1, a.RiskFreePeriodReturn, 1e-12)
}

func TestComputeOptimalAllocationValidation(t *testing.T) {
	if _, err := ComputeOptimalAllocation(worstCaseReturns(-0.10), 0, -0.05, 5, 0.03); err == nil {
		t.Error("Expected an error for a zero-month period, got nil")
	}
	if _, err := ComputeOptimalAllocation(nil, 12, -0.05, 5, 0.03); err == nil {
		t.Error("Expected an error for an empty return series, got nil")
	}
	if _, err := ComputeOptimalAllocation(worstCaseReturns(-0.10), 12, -0.05, 120, 0.03); err == nil {
		t.Error("Expected an error for an out-of-range percentile, got nil")
	}
}

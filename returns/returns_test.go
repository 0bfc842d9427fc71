package returns

import (
	"errors"
	"math"
	"strings"
	"testing"

	ex "github.com/fundbuilder/saver/extensions"
	"github.com/fundbuilder/saver/frame"
)

func TestRollingTwoDayWindow(t *testing.T) {
	rets, err := Rolling([]float64{100, 110, 121}, 2)
	if err != nil {
		t.Fatalf("failed to compute returns: %v", err)
	}

	ex.AssertAreEqual(t, "length", 2, len(rets))
	ex.AssertAreEqual(t, "first return", 0.1, rets[0])
	ex.AssertAreEqual(t, "second return", 0.1, rets[1])
}

func TestRollingWindowEqualsSeriesLength(t *testing.T) {
	rets, err := Rolling([]float64{100, 200}, 2)
	if err != nil {
		t.Fatalf("failed to compute returns: %v", err)
	}

	ex.AssertAreEqual(t, "length", 1, len(rets))
	ex.AssertAreEqual(t, "return", 1.0, rets[0])
}

func TestRollingSingleDayWindowIsAllZeros(t *testing.T) {
	rets, err := Rolling([]float64{100, 110, 121}, 1)
	if err != nil {
		t.Fatalf("failed to compute returns: %v", err)
	}

	ex.AssertAreEqual(t, "length", 3, len(rets))
	for i, r := range rets {
		if r != 0 {
			t.Errorf("Expected a zero return at %d, got %v", i, r)
		}
	}
}

func TestRollingOutputLength(t *testing.T) {
	prices := make([]float64, 10)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	rets, err := Rolling(prices, 3)
	if err != nil {
		t.Fatalf("failed to compute returns: %v", err)
	}

	ex.AssertAreEqual(t, "length", 8, len(rets))
}

func TestRollingInsufficientData(t *testing.T) {
	_, err := Rolling([]float64{100}, 2)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Expected ErrInsufficientData, got %v", err)
	}

	// the message carries both the requirement and the actual count
	if !strings.Contains(err.Error(), "need at least 2 prices, got 1") {
		t.Errorf("Expected the error to name both counts, got %q", err.Error())
	}
}

func TestRollingInvalidWindow(t *testing.T) {
	for _, k := range []int{0, -1} {
		if _, err := Rolling([]float64{100, 110}, k); !errors.Is(err, ErrInvalidWindow) {
			t.Errorf("Expected ErrInvalidWindow for k=%d, got %v", k, err)
		}
	}
}

func TestRollingZeroStartFollowsIEEE(t *testing.T) {
	rets, err := Rolling([]float64{0, 5, 0, 0, -5}, 2)
	if err != nil {
		t.Fatalf("failed to compute returns: %v", err)
	}

	if !math.IsInf(rets[0], 1) {
		t.Errorf("Expected +Inf for a zero start, got %v", rets[0])
	}
	if !math.IsNaN(rets[2]) {
		t.Errorf("Expected NaN for 0/0, got %v", rets[2])
	}
	if !math.IsInf(rets[3], -1) {
		t.Errorf("Expected -Inf for a negative end over a zero start, got %v", rets[3])
	}
}

func TestCalculateRollingReturns(t *testing.T) {
	rec, err := frame.SingleColumnRecord("price", []float64{100, 110, 121})
	if err != nil {
		t.Fatalf("failed to build input record: %v", err)
	}
	defer rec.Release()

	out, err := CalculateRollingReturns(rec, "price", 2)
	if err != nil {
		t.Fatalf("failed to compute returns: %v", err)
	}
	defer out.Release()

	ex.AssertAreEqual(t, "rows", int64(2), out.NumRows())
	ex.AssertAreEqual(t, "cols", int64(1), out.NumCols())
	ex.AssertAreEqual(t, "column name", "price_return_2_day", out.ColumnName(0))

	rets, err := frame.FloatValues(out, "price_return_2_day")
	if err != nil {
		t.Fatalf("failed to read result column: %v", err)
	}
	ex.AssertAreEqual(t, "first return", 0.1, rets[0])
	ex.AssertAreEqual(t, "second return", 0.1, rets[1])
}

func TestCalculateRollingReturnsLeavesInputIntact(t *testing.T) {
	prices := []float64{100, 110, 121, 133.1}

	rec, err := frame.SingleColumnRecord("close", prices)
	if err != nil {
		t.Fatalf("failed to build input record: %v", err)
	}
	defer rec.Release()

	out, err := CalculateRollingReturns(rec, "close", 3)
	if err != nil {
		t.Fatalf("failed to compute returns: %v", err)
	}
	out.Release()

	ex.AssertAreEqual(t, "input rows", int64(4), rec.NumRows())
	got, err := frame.FloatValues(rec, "close")
	if err != nil {
		t.Fatalf("failed to re-read input column: %v", err)
	}
	for i := range prices {
		ex.AssertAreEqual(t, "input price", prices[i], got[i])
	}
}

func TestCalculateRollingReturnsIsDeterministic(t *testing.T) {
	prices := []float64{470.53, 0, 469.82, 471.11, 468.97, 473.5}

	rec, err := frame.SingleColumnRecord("close", prices)
	if err != nil {
		t.Fatalf("failed to build input record: %v", err)
	}
	defer rec.Release()

	first, err := CalculateRollingReturns(rec, "close", 2)
	if err != nil {
		t.Fatalf("failed on first run: %v", err)
	}
	defer first.Release()

	second, err := CalculateRollingReturns(rec, "close", 2)
	if err != nil {
		t.Fatalf("failed on second run: %v", err)
	}
	defer second.Release()

	a, _ := frame.FloatValues(first, "close_return_2_day")
	b, _ := frame.FloatValues(second, "close_return_2_day")

	ex.AssertAreEqual(t, "length", len(a), len(b))
	for i := range a {
		// bit-level comparison so NaN slots must match too
		ex.AssertAreEqual(t, "bits", math.Float64bits(a[i]), math.Float64bits(b[i]))
	}
}

func TestCalculateRollingReturnsMissingColumn(t *testing.T) {
	rec, err := frame.SingleColumnRecord("close", []float64{100, 110})
	if err != nil {
		t.Fatalf("failed to build input record: %v", err)
	}
	defer rec.Release()

	_, err = CalculateRollingReturns(rec, "adjusted_close", 2)
	if !errors.Is(err, frame.ErrColumnNotFound) {
		t.Errorf("Expected frame.ErrColumnNotFound, got %v", err)
	}
}

func TestCalculateRollingReturnsNilRecord(t *testing.T) {
	if _, err := CalculateRollingReturns(nil, "close", 2); err == nil {
		t.Error("Expected an error for a nil record, got nil")
	}
}

func TestReturnColumnName(t *testing.T) {
	ex.AssertAreEqual(t, "name", "close_return_21_day", ReturnColumnName("close", 21))
	ex.AssertAreEqual(t, "name", "price_return_2_day", ReturnColumnName("price", 2))
}

func TestMonthsToTradingDays(t *testing.T) {
	ex.AssertAreEqual(t, "one month", 21, MonthsToTradingDays(1))
	ex.AssertAreEqual(t, "one year", 252, MonthsToTradingDays(12))
}

// Package returns computes simple rolling returns over a price series: for
// every window of k consecutive prices the return is (end - start) / start.
package returns

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/fundbuilder/saver/frame"
)

// TradingDaysPerMonth is the usual equity-market convention.
const TradingDaysPerMonth = 21

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidWindow    = errors.New("invalid window")
)

// MonthsToTradingDays converts a holding period in months to a window size in
// trading days.
func MonthsToTradingDays(months int) int {
	return months * TradingDaysPerMonth
}

// ReturnColumnName is the name given to the output column for a k-day window
// over the named price column, e.g. "close_return_21_day".
func ReturnColumnName(column string, k int) string {
	return fmt.Sprintf("%s_return_%d_day", column, k)
}

// Rolling computes the rolling k-window returns of prices. The result has
// len(prices)-k+1 entries; entry i covers prices[i] through prices[i+k-1].
// Division follows IEEE 754, so a window starting at zero yields ±Inf or NaN
// rather than an error.
func Rolling(prices []float64, k int) ([]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: must be at least 1 day, got %d", ErrInvalidWindow, k)
	}
	if len(prices) < k {
		return nil, fmt.Errorf("%w: need at least %d prices, got %d", ErrInsufficientData, k, len(prices))
	}

	out := make([]float64, 0, len(prices)-k+1)
	for i := 0; i+k <= len(prices); i++ {
		start := prices[i]
		end := prices[i+k-1]
		out = append(out, (end-start)/start)
	}

	return out, nil
}

// CalculateRollingReturns reads the named price column of rec and returns a
// new single-column record of its rolling k-window returns, named by
// ReturnColumnName. The input record is not modified. Failures are
// inspectable with errors.Is: frame.ErrColumnNotFound, frame.ErrTypeMismatch,
// ErrInsufficientData, ErrInvalidWindow.
func CalculateRollingReturns(rec arrow.Record, column string, k int) (arrow.Record, error) {
	if rec == nil {
		return nil, errors.New("record must not be nil")
	}

	prices, err := frame.FloatValues(rec, column)
	if err != nil {
		return nil, err
	}

	rets, err := Rolling(prices, k)
	if err != nil {
		return nil, err
	}

	out, err := frame.SingleColumnRecord(ReturnColumnName(column, k), rets)
	if err != nil {
		return nil, fmt.Errorf("unable to build result record: %w", err)
	}

	return out, nil
}

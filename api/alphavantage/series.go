package alphavantage

import (
	"strings"
)

// TimeSeries selects the frequency and adjustment of a stock data query.
type TimeSeries uint8

const (
	TimeSeriesDaily TimeSeries = iota
	TimeSeriesDailyAdjusted
	TimeSeriesWeekly
	TimeSeriesWeeklyAdjusted
	TimeSeriesMonthly
	TimeSeriesMonthlyAdjusted
)

// note the daily functions both answer under the plain daily response key
var timeSeriesInfo = map[TimeSeries]struct {
	name     string
	function string
	key      string
}{
	TimeSeriesDaily:           {"Daily", "TIME_SERIES_DAILY", "Time Series (Daily)"},
	TimeSeriesDailyAdjusted:   {"DailyAdjusted", "TIME_SERIES_DAILY_ADJUSTED", "Time Series (Daily)"},
	TimeSeriesWeekly:          {"Weekly", "TIME_SERIES_WEEKLY", "Weekly Time Series"},
	TimeSeriesWeeklyAdjusted:  {"WeeklyAdjusted", "TIME_SERIES_WEEKLY_ADJUSTED", "Weekly Adjusted Time Series"},
	TimeSeriesMonthly:         {"Monthly", "TIME_SERIES_MONTHLY", "Monthly Time Series"},
	TimeSeriesMonthlyAdjusted: {"MonthlyAdjusted", "TIME_SERIES_MONTHLY_ADJUSTED", "Monthly Adjusted Time Series"},
}

func (t TimeSeries) Name() string {
	return timeSeriesInfo[t].name
}

// Function is the value of the function query parameter for this series.
func (t TimeSeries) Function() string {
	return timeSeriesInfo[t].function
}

// ResponseKey is the top-level JSON key the series data arrives under.
func (t TimeSeries) ResponseKey() string {
	return timeSeriesInfo[t].key
}

// IsAdjusted reports whether the series carries adjusted close and dividend
// fields.
func (t TimeSeries) IsAdjusted() bool {
	return strings.HasSuffix(t.Function(), "_ADJUSTED")
}

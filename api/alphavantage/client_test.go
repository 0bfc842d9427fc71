package alphavantage

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	c "github.com/fundbuilder/saver/api"
	ex "github.com/fundbuilder/saver/extensions"
)

const weeklyAdjustedPayload = `{
	"Meta Data": {
		"1. Information": "Weekly Adjusted Prices and Volumes",
		"2. Symbol": "SPY",
		"3. Last Refreshed": "2026-08-21",
		"4. Time Zone": "US/Eastern"
	},
	"Weekly Adjusted Time Series": {
		"2026-08-21": {
			"1. open": "645.30",
			"2. high": "652.10",
			"3. low": "641.85",
			"4. close": "650.25",
			"5. adjusted close": "650.25",
			"6. volume": "301457800",
			"7. dividend amount": "0.0000"
		},
		"2026-08-07": {
			"1. open": "632.20",
			"2. high": "640.55",
			"3. low": "630.10",
			"4. close": "638.90",
			"5. adjusted close": "637.12",
			"6. volume": "287631200",
			"7. dividend amount": "1.7400"
		},
		"2026-08-14": {
			"1. open": "639.00",
			"2. high": "646.75",
			"3. low": "636.40",
			"4. close": "644.10",
			"5. adjusted close": "644.10",
			"6. volume": "265882100",
			"7. dividend amount": "0.0000"
		}
	}
}`

const dailyPayload = `{
	"Meta Data": {
		"1. Information": "Daily Prices (open, high, low, close) and Volumes",
		"2. Symbol": "SPY",
		"3. Last Refreshed": "2026-08-21",
		"4. Output Size": "Full size",
		"5. Time Zone": "US/Eastern"
	},
	"Time Series (Daily)": {
		"2026-08-20": {
			"1. open": "648.10",
			"2. high": "651.40",
			"3. low": "645.95",
			"4. close": "649.80",
			"5. volume": "61234500"
		},
		"2026-08-21": {
			"1. open": "649.90",
			"2. high": "652.10",
			"3. low": "647.30",
			"4. close": "650.25",
			"5. volume": "58120900"
		}
	}
}`

type fakeConnection struct {
	payload string
	lastUrl *url.URL
}

func (f *fakeConnection) Request(ctx context.Context, endpoint *url.URL) (*http.Response, error) {
	f.lastUrl = endpoint
	return &http.Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       io.NopCloser(strings.NewReader(f.payload)),
	}, nil
}

func getTestClient(payload string) (Client, *fakeConnection) {
	fake := &fakeConnection{payload: payload}
	return Client{&c.Client{Connection: fake, ApiKey: "test-key"}}, fake
}

func Test_AlphaVantage_ParsesWeeklyAdjustedSeries(t *testing.T) {
	avc, fake := getTestClient(weeklyAdjustedPayload)

	res, err := avc.StockTimeSeries(context.Background(), TimeSeriesWeeklyAdjusted, "SPY")
	if err != nil {
		t.Fatalf("error getting stock time series: %s", err)
	}

	// request shape
	params := fake.lastUrl.Query()
	ex.AssertAreEqual(t, "function", "TIME_SERIES_WEEKLY_ADJUSTED", params.Get("function"))
	ex.AssertAreEqual(t, "symbol", "SPY", params.Get("symbol"))
	ex.AssertAreEqual(t, "apikey", "test-key", params.Get("apikey"))
	ex.AssertAreEqual(t, "outputsize", "full", params.Get("outputsize"))

	// metadata
	ex.AssertAreEqual(t, "symbol", "SPY", res.Metadata.Symbol)
	ex.AssertAreEqual(t, "time zone", "US/Eastern", res.Metadata.TimeZone)

	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("error loading time zone: %s", err)
	}
	expectedRefresh := time.Date(2026, time.August, 21, 0, 0, 0, 0, location)
	if !expectedRefresh.Equal(res.Metadata.LastRefreshed) {
		t.Fatalf("value mismatch for last refreshed, expected %s, got %s", expectedRefresh, res.Metadata.LastRefreshed)
	}

	// bars arrive oldest first regardless of response order
	ex.AssertAreEqual(t, "points", 3, len(res.Points))
	ex.AssertAreEqual(t, "first bar day", "2026-08-07", res.Points[0].Timestamp.Format(time.DateOnly))
	ex.AssertAreEqual(t, "second bar day", "2026-08-14", res.Points[1].Timestamp.Format(time.DateOnly))
	ex.AssertAreEqual(t, "third bar day", "2026-08-21", res.Points[2].Timestamp.Format(time.DateOnly))

	oldest := res.Points[0]
	ex.AssertAreEqual(t, "open", 632.20, oldest.Open.Float64)
	ex.AssertAreEqual(t, "high", 640.55, oldest.High.Float64)
	ex.AssertAreEqual(t, "low", 630.10, oldest.Low.Float64)
	ex.AssertAreEqual(t, "close", 638.90, oldest.Close.Float64)
	ex.AssertAreEqual(t, "volume", 287631200.0, oldest.Volume.Float64)
	ex.AssertAreEqual(t, "adjusted close", 637.12, oldest.AdjustedClose.Float64)
	ex.AssertAreEqual(t, "dividend amount", 1.74, oldest.DividendAmount.Float64)
}

func Test_AlphaVantage_ParsesDailySeries(t *testing.T) {
	avc, _ := getTestClient(dailyPayload)

	res, err := avc.StockTimeSeries(context.Background(), TimeSeriesDaily, "SPY")
	if err != nil {
		t.Fatalf("error getting stock time series: %s", err)
	}

	ex.AssertAreEqual(t, "points", 2, len(res.Points))
	ex.AssertAreEqual(t, "close", 649.80, res.Points[0].Close.Float64)

	// a plain daily series has no adjusted fields
	ex.AssertNillability(t, "adjusted close", true, res.Points[0].AdjustedClose.Ptr())
	ex.AssertNillability(t, "dividend amount", true, res.Points[0].DividendAmount.Ptr())
}

func Test_AlphaVantage_SurfacesApiFaults(t *testing.T) {
	payloads := map[string]string{
		"rate limit note": `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`,
		"error message":   `{"Error Message": "Invalid API call. Please retry or visit the documentation."}`,
		"information":     `{"Information": "This is a premium endpoint."}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			avc, _ := getTestClient(payload)

			_, err := avc.StockTimeSeries(context.Background(), TimeSeriesDaily, "SPY")
			if err == nil {
				t.Fatal("Expected an error for an api fault payload, got nil")
			}
			if !strings.Contains(err.Error(), "alpha vantage rejected the request") {
				t.Errorf("Expected a rejection error, got %v", err)
			}
		})
	}
}

func Test_TimeSeriesDescriptors(t *testing.T) {
	ex.AssertAreEqual(t, "daily function", "TIME_SERIES_DAILY", TimeSeriesDaily.Function())
	ex.AssertAreEqual(t, "daily key", "Time Series (Daily)", TimeSeriesDaily.ResponseKey())
	ex.AssertAreEqual(t, "daily adjusted key", "Time Series (Daily)", TimeSeriesDailyAdjusted.ResponseKey())
	ex.AssertAreEqual(t, "weekly adjusted function", "TIME_SERIES_WEEKLY_ADJUSTED", TimeSeriesWeeklyAdjusted.Function())

	ex.AssertAreEqual(t, "daily adjusted", true, TimeSeriesDailyAdjusted.IsAdjusted())
	ex.AssertAreEqual(t, "weekly plain", false, TimeSeriesWeekly.IsAdjusted())
}

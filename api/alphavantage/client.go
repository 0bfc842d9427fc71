// Package alphavantage queries the Alpha Vantage stock API and maps its
// responses onto the data models. https://www.alphavantage.co/documentation/
package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	c "github.com/fundbuilder/saver/api"
	m "github.com/fundbuilder/saver/models"
)

// public
const (
	HostDefault = "www.alphavantage.co"
)

// private
const (
	// default query parameters
	defaultOutputSize = "full"
	defaultDataType   = "JSON"
	defaultTimeout    = time.Second * 30

	// the free tier allows 5 requests per minute
	defaultRequestsPerMinute = 5

	// api request elements
	query    = "query"
	symbol   = "symbol"
	function = "function"
)

type Client struct {
	*c.Client
}

func GetClient(apiKey string) Client {
	return Client{
		c.ClientFactory(HostDefault, apiKey, defaultTimeout, defaultRequestsPerMinute),
	}
}

// StockTimeSeries queries one symbol at the given frequency and returns the
// parsed series, bars ordered oldest first.
func (avc *Client) StockTimeSeries(ctx context.Context, series TimeSeries, ticker string) (*m.SeriesResult, error) {
	endpoint := avc.buildRequestPath(map[string]string{
		function: series.Function(),
		symbol:   ticker,
	})

	response, err := avc.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status from alpha vantage: %s", response.Status)
	}

	raw, err := parseRawJson(response.Body)
	if err != nil {
		return nil, err
	}

	if err := checkForApiFault(raw); err != nil {
		return nil, err
	}

	metadata, timeZone, err := parseMetadata(raw)
	if err != nil {
		return nil, err
	}

	points, err := parseSeriesPoints(raw, series, timeZone)
	if err != nil {
		return nil, err
	}

	return &m.SeriesResult{
		Metadata: metadata,
		Points:   points,
	}, nil
}

func (avc *Client) buildRequestPath(params map[string]string) *url.URL {
	endpoint := &url.URL{}
	endpoint.Path = query

	// base parameters
	query := endpoint.Query()
	query.Set("apikey", avc.ApiKey)
	query.Set("datatype", defaultDataType)
	query.Set("outputsize", defaultOutputSize)

	// additional parameters
	for key, value := range params {
		query.Set(key, value)
	}

	endpoint.RawQuery = query.Encode()

	return endpoint
}

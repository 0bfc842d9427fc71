// Package api holds the transport shared by market data providers: a small
// client with a swappable connection, so provider packages stay testable
// without the network.
package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

type Connection interface {
	Request(ctx context.Context, endpoint *url.URL) (*http.Response, error)
}

type ClientHost struct {
	client  *http.Client
	host    string
	limiter *rate.Limiter
}

type Client struct {
	Connection Connection
	ApiKey     string
}

func (conn *ClientHost) Request(ctx context.Context, endpoint *url.URL) (*http.Response, error) {
	if conn.limiter != nil {
		if err := conn.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	endpoint.Scheme = "https"
	endpoint.Host = conn.host

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}

	return conn.client.Do(req)
}

// ClientFactory builds a client for host. A positive requestsPerMinute caps
// the outbound rate, which free market data tiers require.
func ClientFactory(host string, apiKey string, timeout time.Duration, requestsPerMinute int) *Client {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}

	clientHost := &ClientHost{
		client:  &http.Client{Timeout: timeout},
		host:    host,
		limiter: limiter,
	}

	return &Client{
		Connection: clientHost,
		ApiKey:     apiKey,
	}
}

package core

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saver_http_requests_total",
		Help: "Count of http requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "saver_http_request_duration_seconds",
		Help:    "Latency of http requests by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	returnWindowsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saver_return_windows_computed_total",
		Help: "Count of rolling return windows computed.",
	})

	symbolsSynced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "saver_symbols_synced_total",
		Help: "Count of successful symbol syncs against the market data api.",
	})
)

// MetricsMiddleware records request counts and latency per chi route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

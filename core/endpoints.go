package core

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/guregu/null/v6"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fundbuilder/saver/contracts"
	"github.com/fundbuilder/saver/frame"
	"github.com/fundbuilder/saver/returns"
)

const (
	DefaultAddr = ":8080"
)

func GetHttpServer(sc *ServiceContext, addr string) *http.Server {
	if addr == "" {
		addr = DefaultAddr
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(MetricsMiddleware)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping)

		r.Route("/series/{symbol}", func(r chi.Router) {
			r.Post("/sync", func(w http.ResponseWriter, req *http.Request) { syncSeries(w, req, sc) })
			r.Get("/summary", func(w http.ResponseWriter, req *http.Request) { seriesSummary(w, req, sc) })
			r.Get("/runs", func(w http.ResponseWriter, req *http.Request) { returnRuns(w, req, sc) })
		})

		r.Route("/returns", func(r chi.Router) {
			r.Post("/analyze", func(w http.ResponseWriter, req *http.Request) { analyzeReturns(w, req, sc) })
			r.Post("/sweep", func(w http.ResponseWriter, req *http.Request) { sweepReturns(w, req, sc) })
		})
	})

	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

func ping(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetServiceResponseOk(&contracts.PingResponse{Message: "pong"}))
}

func syncSeries(w http.ResponseWriter, r *http.Request, sc *ServiceContext) {
	symbol := chi.URLParam(r, "symbol")

	lastRefreshed, inserted, err := sc.SyncSymbolSeries(symbol)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, contracts.GetServiceResponseOk(&contracts.SyncResponse{
		Symbol:        symbol,
		LastRefreshed: lastRefreshed,
		Inserted:      inserted,
	}))
}

func seriesSummary(w http.ResponseWriter, r *http.Request, sc *ServiceContext) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		renderBadRequest(w, r, err)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		renderBadRequest(w, r, err)
		return
	}

	res, err := sc.GetSeriesSummary(chi.URLParam(r, "symbol"), from, to)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, contracts.GetServiceResponseOk(res))
}

func returnRuns(w http.ResponseWriter, r *http.Request, sc *ServiceContext) {
	res, err := sc.GetReturnRuns(chi.URLParam(r, "symbol"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, contracts.GetServiceResponseOk(res))
}

func analyzeReturns(w http.ResponseWriter, r *http.Request, sc *ServiceContext) {
	req := &contracts.AnalyzeRequest{}
	if err := render.Bind(r, req); err != nil {
		renderBadRequest(w, r, err)
		return
	}

	res, err := sc.AnalyzeReturns(req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, contracts.GetServiceResponseOk(res))
}

func sweepReturns(w http.ResponseWriter, r *http.Request, sc *ServiceContext) {
	req := &contracts.SweepRequest{}
	if err := render.Bind(r, req); err != nil {
		renderBadRequest(w, r, err)
		return
	}

	res, err := sc.WindowSweep(req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, contracts.GetServiceResponseOk(res))
}

func parseDateParam(r *http.Request, name string) (null.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return null.Time{}, nil
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return null.Time{}, fmt.Errorf("%s must be a %s date: %w", name, time.DateOnly, err)
	}

	return null.TimeFrom(t), nil
}

func renderBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, contracts.GetServiceResponseError(err.Error()))
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error serving %s: %v", r.URL.Path, err)
	}

	render.Status(r, status)
	render.JSON(w, r, contracts.GetServiceResponseError(err.Error()))
}

// statusForError translates the sentinels the service wraps its errors with
// into HTTP statuses. Anything unrecognized is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrUnknownSymbol) || errors.Is(err, frame.ErrColumnNotFound):
		return http.StatusNotFound
	case errors.Is(err, frame.ErrTypeMismatch) || errors.Is(err, returns.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, returns.ErrInsufficientData) || errors.Is(err, ErrNonFiniteReturns):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrRecentlyRefreshed):
		return http.StatusConflict
	case errors.Is(err, ErrMarketDataUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domai "github.com/bryanwahyu/inspekta/internal/domain/ai"
	"github.com/bryanwahyu/inspekta/internal/domain/photofailures"
	"github.com/bryanwahyu/inspekta/internal/domain/reports"
	"github.com/bryanwahyu/inspekta/internal/middleware"
	"github.com/bryanwahyu/inspekta/internal/pkg/logger"
)

// ReportReader is the read side of the inspection service.
type ReportReader interface {
	GetReport(ctx context.Context, client, id string) (*reports.ReportRecord, error)
	LatestReport(ctx context.Context, client, address string) (*reports.ReportRecord, error)
	LookupPhoto(ctx context.Context, client, reportID, filename string) (reports.PageRecord, error)
	ListFailures(ctx context.Context, client, reportID string, limit int) ([]*photofailures.Failure, error)
}

type Options struct {
	APIKeys        map[string]string
	AllowedOrigins []string
	Limiter        *middleware.RateLimiter
	Health         map[string]middleware.HealthChecker
	Registry       *prometheus.Registry
	Log            *logger.Logger
}

type Router struct {
	svc ReportReader
	log *logger.Logger
}

// badRequest marks input validation failures.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func invalid(err error) error { return badRequest{msg: err.Error()} }

func NewRouter(svc ReportReader, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	r := &Router{svc: svc, log: log.With("component", "http")}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	if opts.Registry != nil {
		mux.Use(middleware.NewHTTPMetrics(opts.Registry).Middleware)
	}
	mux.Use(middleware.LoggingMiddleware(r.log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(opts.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	if opts.Limiter != nil {
		mux.Use(middleware.RateLimitMiddleware(opts.Limiter))
	}

	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/livez", middleware.LivenessHandler)
	if opts.Registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}

	mux.Route("/v1/{client}", func(rt chi.Router) {
		rt.Use(middleware.RequireClientMatch)
		rt.Get("/reports/{id}", r.wrap(r.handleGetReport))
		rt.Get("/reports/{id}/photos/{filename}", r.wrap(r.handleLookupPhoto))
		rt.Get("/reports/{id}/failures", r.wrap(r.handleFailures))
		rt.Get("/properties/latest", r.wrap(r.handleLatest))
	})

	return mux
}

func allowedOrigins(o []string) []string {
	if len(o) == 0 {
		return []string{"*"}
	}
	return o
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br badRequest
		switch {
		case errors.As(err, &br):
			http.Error(w, br.msg, http.StatusBadRequest)
		case errors.Is(err, reports.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, domai.ErrQuotaExceeded):
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		default:
			r.log.Error("request failed", "path", req.URL.Path, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func reportID(req *http.Request) (string, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateReportID(id); err != nil {
		return "", invalid(err)
	}
	return id, nil
}

// GET /v1/{client}/reports/{id}
func (r *Router) handleGetReport(w http.ResponseWriter, req *http.Request) error {
	client := chi.URLParam(req, "client")
	id, err := reportID(req)
	if err != nil {
		return err
	}
	rec, err := r.svc.GetReport(req.Context(), client, id)
	if err != nil {
		return err
	}
	return writeJSON(w, rec)
}

// GET /v1/{client}/reports/{id}/photos/{filename}
func (r *Router) handleLookupPhoto(w http.ResponseWriter, req *http.Request) error {
	client := chi.URLParam(req, "client")
	id, err := reportID(req)
	if err != nil {
		return err
	}
	filename, err := url.PathUnescape(chi.URLParam(req, "filename"))
	if err != nil {
		return invalid(err)
	}
	if err := middleware.ValidateFilename(filename); err != nil {
		return invalid(err)
	}

	page, err := r.svc.LookupPhoto(req.Context(), client, id, filename)
	if err != nil {
		return err
	}
	return writeJSON(w, page)
}

// GET /v1/{client}/reports/{id}/failures?limit=50
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	client := chi.URLParam(req, "client")
	id, err := reportID(req)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.ListFailures(req.Context(), client, id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*photofailures.Failure{}
	}
	return writeJSON(w, list)
}

// GET /v1/{client}/properties/latest?address=...
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	client := chi.URLParam(req, "client")
	address, err := middleware.ValidateAddress(req.URL.Query().Get("address"))
	if err != nil {
		return invalid(err)
	}
	rec, err := r.svc.LatestReport(req.Context(), client, address)
	if err != nil {
		return err
	}
	return writeJSON(w, rec)
}

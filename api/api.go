// Package api exposes the ledger over HTTP as a JSON API.
//
// Every response is wrapped in a {data, error} envelope. Money in request
// bodies is a decimal rupee string ("1250.50"); dates are YYYY-MM-DD.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/export"
)

// DefaultBasePath is where the routes are mounted unless WithBasePath says
// otherwise.
const DefaultBasePath = "/api/v1"

// Handler serves the ledger's HTTP API.
type Handler struct {
	ledger   *haulage.Ledger
	logger   *slog.Logger
	basePath string
	user     string
	pass     string
	metrics  http.Handler
	router   chi.Router
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger for request and error logs.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithBasicAuth requires HTTP Basic credentials on every route. Empty
// credentials leave the API open.
func WithBasicAuth(user, pass string) Option {
	return func(h *Handler) { h.user, h.pass = user, pass }
}

// WithBasePath mounts the routes under path instead of DefaultBasePath.
func WithBasePath(path string) Option {
	return func(h *Handler) { h.basePath = path }
}

// WithMetrics serves h at /metrics, outside basic auth.
func WithMetrics(metrics http.Handler) Option {
	return func(h *Handler) { h.metrics = metrics }
}

// New builds the router for l.
func New(l *haulage.Ledger, opts ...Option) *Handler {
	h := &Handler{
		ledger:   l,
		logger:   slog.Default(),
		basePath: DefaultBasePath,
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route(h.basePath, func(r chi.Router) {
		r.Use(h.basicAuth)

		// Clients
		r.Get("/clients", h.listClients)
		r.Post("/clients", h.createClient)
		r.Get("/clients/{id}", h.getClient)
		r.Put("/clients/{id}", h.updateClient)
		r.Get("/clients/{id}/export.{format}", h.exportClient)

		// Bills
		r.Get("/bills", h.listBills)
		r.Post("/bills", h.issueBill)
		r.Get("/bills/{id}", h.getBill)
		r.Put("/bills/{id}", h.updateBill)
		r.Delete("/bills/{id}", h.deleteBill)
		r.Get("/bills/{id}/render", h.renderBill)

		// Payments
		r.Get("/payments", h.listPayments)
		r.Post("/payments", h.recordPayment)

		// Settings and whole-ledger operations
		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.updateSettings)
		r.Put("/counter", h.setCounter)
		r.Get("/dashboard", h.dashboard)
		r.Get("/snapshot", h.snapshot)
		r.Post("/snapshot", h.restore)
	})

	r.Get("/healthz", h.health)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Store().Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"formats": export.Formats,
	})
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

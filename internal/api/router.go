// internal/api/router.go
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"content-analyzer/internal/common/logger"
	"content-analyzer/internal/engine"
	"content-analyzer/internal/store"
	"content-analyzer/pkg/catalog"
)

// Analyzer is the part of the engine the API drives.
type Analyzer interface {
	Run(ctx context.Context, text string) (*engine.Result, error)
	Settings() engine.Settings
	UpdateSettings(u engine.SettingsUpdate) (engine.Settings, error)
	TestConnection(ctx context.Context) error
	Catalog() *catalog.Catalog
}

type Deps struct {
	Analyzer       Analyzer
	Store          store.Store
	Logger         logger.Logger
	ServiceName    string
	RequestTimeout time.Duration
	// MetricsHandler defaults to promhttp.Handler().
	MetricsHandler http.Handler
}

const (
	defaultRequestTimeout = 60 * time.Second
	maxBodyBytes          = 1 << 20
)

// NewRouter wires the HTTP API.
func NewRouter(d Deps) http.Handler {
	if d.Store == nil {
		d.Store = store.NopStore{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewNoOpLogger()
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = defaultRequestTimeout
	}
	if d.MetricsHandler == nil {
		d.MetricsHandler = promhttp.Handler()
	}

	h := &handler{
		analyzer: d.Analyzer,
		store:    d.Store,
		logger:   d.Logger.Named("api"),
		service:  d.ServiceName,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(countRequests)

	r.Get("/health", h.health)
	r.Get("/ready", h.ready)
	r.Method(http.MethodGet, "/metrics", d.MetricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(d.RequestTimeout))

		r.Post("/analyze", h.analyze)
		r.Post("/detect-type", h.detectType)
		r.Get("/scenarios", h.scenarios)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.getSettings)
			r.Put("/", h.putSettings)
			r.Post("/test", h.testSettings)
		})

		r.Route("/analyses", func(r chi.Router) {
			r.Get("/", h.listAnalyses)
			r.Get("/{id}", h.getAnalysis)
		})
	})

	return r
}

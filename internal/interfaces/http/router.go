// Package http wires the handlers and middleware into the route tree and
// runs the server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VitaQuote/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/VitaQuote/internal/interfaces/http/handlers"
	"github.com/turtacn/VitaQuote/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.
type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	QuoteHandler   *handlers.QuoteHandler
	CatalogHandler *handlers.CatalogHandler
	HealthHandler  *handlers.HealthHandler

	AuthMiddleware *middleware.AuthMiddleware
	CORS           middleware.CORSConfig
	LoggingConfig  middleware.LoggingConfig

	Logger  logging.Logger
	Metrics *prometheus.Metrics
}

// NewRouter builds the HTTP route tree: public health, metrics, and login
// endpoints, plus the session-guarded /api/v1 group.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, cfg.LoggingConfig))

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}
	if cfg.AuthHandler != nil {
		r.Post("/auth/login", cfg.AuthHandler.Login)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.Handler)
		}

		if cfg.AuthHandler != nil {
			api.Post("/auth/logout", cfg.AuthHandler.Logout)
			api.Post("/auth/heartbeat", cfg.AuthHandler.Heartbeat)
		}
		if cfg.QuoteHandler != nil {
			api.Post("/quotes", cfg.QuoteHandler.Compute)
			api.Post("/quotes/export", cfg.QuoteHandler.Export)
		}
		if cfg.CatalogHandler != nil {
			api.Get("/catalog", cfg.CatalogHandler.Status)
			api.Post("/catalog/import", cfg.CatalogHandler.Import)
		}
	})

	return r
}

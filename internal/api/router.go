// Package api exposes the read-only query surface dashboard consumers
// use: alerts, anomalies, trend series, and the target forecast. All
// endpoints are pure reads over the persisted store plus the raw JSON
// histories.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/mharmon/engpulse/internal/config"
	"github.com/mharmon/engpulse/internal/storage/sqlite"
)

// NewRouter builds the Chi router with middleware and all routes.
func NewRouter(store *sqlite.Store, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.API.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	if cfg.API.RateLimitEnabled {
		r.Use(rateLimitMiddleware(cfg.API.RateLimitRequests, cfg.API.RateLimitWindowDuration()))
	}

	h := newHandler(store, cfg)

	r.Get("/health", h.healthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/alerts", h.getAlerts)
		r.Get("/anomalies", h.getAnomalies)
		r.Get("/anomalies/{dashboard}", h.getAnomaliesForDashboard)
		r.Get("/trends/{dashboard}", h.getTrends)
		r.Get("/forecast", h.getForecast)
	})

	return r
}

// Package router provides HTTP routing configuration using Chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/keyfoundry/keybind/internal/api/handler"
	"github.com/keyfoundry/keybind/internal/api/middleware"
)

// Config holds router configuration.
type Config struct {
	Version string
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoints
	healthHandler := handler.NewHealthHandler(cfg.Version)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	keyHandler := handler.NewKeyHandler()
	digestHandler := handler.NewDigestHandler()
	envelopeHandler := handler.NewEnvelopeHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/keys", func(r chi.Router) {
			r.Post("/inspect", keyHandler.Inspect)
			r.Post("/verify", keyHandler.Verify)
		})
		r.Post("/digest", digestHandler.Compute)
		r.Route("/envelopes", func(r chi.Router) {
			r.Post("/verify", envelopeHandler.Verify)
		})
	})

	return r
}

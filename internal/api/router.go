// Package api implements the redbiom HTTP API: admin loading routes,
// sample and metadata retrieval, and summarization, served over chi.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/adswafford/redbiom/internal/api/auth"
	"github.com/adswafford/redbiom/pkg/kv"
)

// NewRouter builds the API router. A nil token service leaves the admin
// routes open.
func NewRouter(store kv.Store, tokens *auth.TokenService) http.Handler {
	h := NewHandlers(store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.Liveness)
	r.Get("/health/ready", h.Readiness)

	r.Route("/api/v1", func(r chi.Router) {
		// Admin routes mutate the store and carry auth when enabled.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth(tokens))
			r.Post("/contexts", h.CreateContext)
			r.Post("/metadata", h.LoadMetadata)
			r.Post("/contexts/{context}/samples", h.LoadSamples)
		})

		r.Post("/fetch/samples", h.FetchSamples)
		r.Post("/fetch/metadata", h.FetchMetadata)
		r.Get("/summarize/metadata", h.SummarizeMetadata)
		r.Get("/summarize/contexts", h.SummarizeContexts)
	})

	return r
}

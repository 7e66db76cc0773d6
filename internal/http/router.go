// Package http exposes the service's REST surface. Handlers are thin
// adapters: all pipeline logic lives in the internal packages.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"or-extraction-service/internal/config"
	"or-extraction-service/internal/corrections"
	"or-extraction-service/internal/events"
	"or-extraction-service/internal/labels"
	"or-extraction-service/internal/service/extraction"
)

// NewRouter constructs the HTTP router for the service.
func NewRouter(
	cfg *config.Configuration,
	scheme *labels.Scheme,
	extractor *extraction.Handler,
	store *corrections.Store,
	publisher *events.Publisher,
) http.Handler {
	api := &apiHandlers{
		cfg:       cfg,
		scheme:    scheme,
		extractor: extractor,
		store:     store,
		publisher: publisher,
	}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/extract", api.extract)
		r.Route("/corrections", func(r chi.Router) {
			r.Post("/", api.submitCorrection)
			r.Get("/report", api.correctionsReport)
			r.Post("/merge", api.mergeCorrections)
		})
	})

	return r
}

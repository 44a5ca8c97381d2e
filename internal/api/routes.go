package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every endpoint. metricsHandler may be nil.
func NewRouter(h *RecipeHandler, requestTimeout time.Duration, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware)

	// promhttp negotiates its own compression.
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(gzipMiddleware)
		r.Use(timeoutMiddleware(requestTimeout))

		r.Get("/health", h.HandleHealth)

		r.Post("/extract", h.HandleExtract)
		r.Post("/recipe-extractor", h.HandleExtract)
		r.Post("/extract/batch", h.HandleBatch)
		r.Get("/classify", h.HandleClassify)

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", h.HandleListRecipes)
			r.Get("/{id}", h.HandleGetRecipe)
			r.Get("/{id}/scaled", h.HandleScaledRecipe)
			r.Patch("/{id}/favorite", h.HandleFavorite)
			r.Delete("/{id}", h.HandleDeleteRecipe)
		})
	})

	return r
}

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/hyperengineering/lifter/internal/metrics"
)

// NewRouter creates a new router with all routes configured.
// With a nil metrics manager no request metrics are recorded and /metrics is
// not mounted. CORS headers are only sent when corsOrigins is non-empty.
func NewRouter(h *Handler, m *metrics.Manager, gatherer prometheus.Gatherer, corsOrigins ...string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler)
	}
	r.Use(LoggingMiddleware)
	if m != nil {
		r.Use(MetricsMiddleware(m))
		r.Use(RecoveryWithMetrics(m))
	} else {
		r.Use(RecoveryMiddleware)
	}

	if m != nil && gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Get("/health", h.Health)

		// Protected routes (auth required)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.apiKey))

			r.Get("/plans", h.ListPlans)
			r.Post("/plans/import", h.ImportPlan)
			r.Get("/plans/{id}", h.GetPlan)
			r.Delete("/plans/{id}", h.DeletePlan)
			r.Post("/plans/{id}/select", h.SelectPlan)

			r.Get("/session", h.GetSession)
			r.Put("/session/cursor", h.PutCursor)
			r.Post("/session/repetitions", h.StartRepetition)
			r.Put("/session/repetition/name", h.RenameRepetition)
			r.Put("/session/logs", h.PutLog)

			r.Route("/session/pending", func(r chi.Router) {
				r.Post("/edit", h.ProposeEdit)
				r.Post("/add", h.ProposeAdd)
				r.Post("/remove", h.ProposeRemove)
				r.Post("/reorder", h.ProposeReorder)
				r.Post("/apply", h.ApplyPending)
				r.Delete("/", h.DismissPending)
			})
		})
	})

	return r
}

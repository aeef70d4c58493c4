// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/olegiv/ocms-pages/internal/metrics"
	"github.com/olegiv/ocms-pages/internal/middleware"
)

// RouterConfig configures the HTTP router.
type RouterConfig struct {
	// RateLimit is the per-client request rate of public routes; zero
	// disables limiting.
	RateLimit float64
	RateBurst int
	// PublicMaxAge is the Cache-Control max-age of public responses.
	PublicMaxAge   int
	RequestTimeout time.Duration
	// AllowedOrigins enables CORS for the listed origins.
	AllowedOrigins []string
	// Metrics, when set, instruments every route and serves /metrics.
	Metrics *metrics.Metrics
}

// NewRouter builds the HTTP router of the API.
func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(chimw.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.ActorHeader, "X-Request-ID"},
			ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Actor(h.DB))

	r.Get("/health", h.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	// Public surface
	r.Group(func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst).Middleware())
		}
		r.Use(middleware.CacheControl(cfg.PublicMaxAge))

		r.Get("/sitemap.xml", h.Sitemap)
		r.Get("/robots.txt", h.Robots)
		r.Get("/api/v1/pages", h.ListPublishedPages)
		r.Get("/api/v1/pages/{slug}", h.GetPublishedPage)
	})

	// Admin surface
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.RequireActor)
		r.Use(middleware.NoStore)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/events", h.ListEvents)
		r.Get("/scheduler/jobs", h.ListJobs)

		r.Route("/pages", func(r chi.Router) {
			r.Get("/", h.ListPages)
			r.Post("/", h.CreatePage)
			r.Get("/options", h.PageOptions)
			r.Post("/bulk", h.BulkPages)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetPage)
				r.Put("/", h.UpdatePage)
				r.Delete("/", h.DeletePage)
				r.Post("/publish", h.PublishPage)
				r.Post("/unpublish", h.UnpublishPage)
				r.Post("/archive", h.ArchivePage)
				r.Post("/duplicate", h.DuplicatePage)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	return r
}

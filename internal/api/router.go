package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Rigger/internal/buildlog"
	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/recommend"
)

type RouterConfig struct {
	AdminToken         string
	RateLimitPerMinute int
}

func NewRouter(svc *recommend.Service, logs buildlog.Store, c catalog.Catalog, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 120
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.RateLimitPerMinute))

	builds := NewBuildsHandler(svc, logs)
	cat := NewCatalogHandler(c)
	admin := NewAdminHandler(logs)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/builds/recommend", builds.Recommend)
		r.Post("/builds/compare", builds.Compare)
		r.Get("/builds", builds.List)
		r.Get("/builds/{id}", builds.Get)

		r.Get("/components", cat.Components)
		r.Get("/catalog/summary", cat.Summary)
		r.Get("/build-templates", cat.Templates)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Get("/admin/stats", admin.Stats)
		})
	})

	return r
}

// NewMetricsRouter serves /health and /metrics. Health reports 503 when the catalog
// cannot be summarized.
func NewMetricsRouter(c catalog.Catalog) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		s, err := c.Summary(ctx)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "catalog": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "components": s.TotalComponents})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

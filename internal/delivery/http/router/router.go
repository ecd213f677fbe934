package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/user/catalog-image-sync/internal/delivery/http/handler"
	"github.com/user/catalog-image-sync/internal/delivery/http/middleware"
	"github.com/user/catalog-image-sync/pkg/metrics"
)

func New(h *handler.Handler, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/api/health", h.HandleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sync", h.HandleSubmitSync)
		r.Get("/runs/latest", h.HandleLatestRun)
		r.Get("/status", h.HandleProductStatus)
	})

	return r
}

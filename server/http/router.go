package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"ingest-service/internal/config"
	ingestHnd "ingest-service/internal/ingest/handler"
	"ingest-service/internal/ingest/service"
	"ingest-service/internal/metrics"
	"ingest-service/internal/middleware"
	"ingest-service/internal/store"
	"ingest-service/server/http/handlers"
)

// Deps are the long-lived components the routes serve from.
type Deps struct {
	Service *service.Service
	Store   store.Store
	Metrics *metrics.Metrics
}

func NewRouter(cfg config.Config, logger zerolog.Logger, d Deps) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(cfg.MaxUploadBytes()))

	r.Get("/health", handlers.Health)
	if d.Metrics != nil {
		r.Method("GET", "/metrics", d.Metrics.Handler())
	}

	r.Post("/imports", ingestHnd.Import(d.Service, cfg, logger))
	r.Get("/imports", ingestHnd.Imports(d.Store))
	r.Get("/summary", ingestHnd.Summary(d.Store))
	r.Get("/metrics/records", ingestHnd.Records(d.Store))
	r.Get("/identification/latest", ingestHnd.LatestIdentification(d.Store))
	r.Get("/stats", ingestHnd.Stats(d.Store))

	return r
}

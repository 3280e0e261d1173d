// Package app assembles the long-lived components shared by the HTTP
// server and the CLI.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"ingest-service/internal/config"
	"ingest-service/internal/ingest/extract"
	"ingest-service/internal/ingest/service"
	"ingest-service/internal/metrics"
	"ingest-service/internal/source"
	"ingest-service/internal/store"
	serverhttp "ingest-service/server/http"
)

type App struct {
	Config  config.Config
	Log     zerolog.Logger
	Store   store.Store
	Metrics *metrics.Metrics
	Service *service.Service
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	vocab, err := extract.LoadVocabulary(cfg.VocabularyFile)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.StoreOptions(), log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	m := metrics.New()
	svc := service.New(extract.New(vocab, log), st, m, log, service.Options{
		DefaultYear: cfg.DefaultYearPtr(),
		Concurrency: cfg.Concurrency,
	})
	log.Info().Str("store", cfg.Store.Driver).Str("vocabulary", vocab.Version).Msg("app ready")
	return &App{Config: cfg, Log: log, Store: st, Metrics: m, Service: svc}, nil
}

// Source builds the configured file source.
func (a *App) Source(ctx context.Context) (source.Source, error) {
	switch a.Config.Source.Driver {
	case "s3":
		return source.NewS3(ctx, a.Config.S3Config())
	case "fs", "":
		return source.NewFS(a.Config.Source.DataDir), nil
	default:
		return nil, fmt.Errorf("unknown source driver %q", a.Config.Source.Driver)
	}
}

func (a *App) Router() http.Handler {
	return serverhttp.NewRouter(a.Config, a.Log, serverhttp.Deps{
		Service: a.Service,
		Store:   a.Store,
		Metrics: a.Metrics,
	})
}

func (a *App) Close() error { return a.Store.Close() }

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ingest-service/internal/app"
	"ingest-service/internal/config"
	serverhttp "ingest-service/server/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := config.SetupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup")
	}
	defer func() { _ = a.Close() }()

	if err := serverhttp.Serve(ctx, cfg.Addr(), a.Router(), cfg.ShutdownTimeout, logger); err != nil {
		logger.Error().Err(err).Msg("listen")
	}
}

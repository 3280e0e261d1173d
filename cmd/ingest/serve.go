package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	serverhttp "ingest-service/server/http"
)

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, nil)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serverhttp.Serve(ctx, a.Config.Addr(), a.Router(), a.Config.ShutdownTimeout, a.Log)
		},
	}
}

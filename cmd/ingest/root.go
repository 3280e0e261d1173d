package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ingest-service/internal/app"
	"ingest-service/internal/config"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Extract monthly metrics from spreadsheet reports and consolidate them",
		Long: `ingest reads .xlsx, .xls and .csv reports, finds their data sections,
extracts one twelve-month series per metric row and adds it into the
consolidated store.

Settings come from INGEST_* environment variables; flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("store", "", "Store driver: sqlite, postgres or memory")
	cmd.PersistentFlags().String("sqlite-path", "", "SQLite database file")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewSummaryCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewServeCmd())
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadApp reads the environment, applies persistent flags and then
// override, and builds the app.
func loadApp(cmd *cobra.Command, override func(*config.Config)) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("store"); v != "" {
		cfg.Store.Driver = v
	}
	if v, _ := flags.GetString("sqlite-path"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := config.SetupLogger(cfg)
	return app.New(cmd.Context(), cfg, logger)
}

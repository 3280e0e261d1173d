package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"ingest-service/internal/config"
	"ingest-service/internal/ingest/service"
	"ingest-service/internal/report"
)

func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import every spreadsheet from a directory or S3 prefix",
		Long: `Import lists the configured source, extracts each spreadsheet and adds
its records into the store. A failing file never stops the others; the
command fails only when no file could be imported.

Examples:
  ingest import --dir ./data
  ingest import --dir ./data --default-year 2025 --concurrency 8
  ingest import --s3-bucket reports --s3-prefix alagoas/2025/`,
		Args: cobra.NoArgs,
		RunE: runImport,
	}
	cmd.Flags().StringP("dir", "d", "", "Directory to import from")
	cmd.Flags().String("s3-bucket", "", "S3 bucket to import from")
	cmd.Flags().String("s3-prefix", "", "Key prefix inside the S3 bucket")
	cmd.Flags().IntP("default-year", "y", 0, "Year for sheets that do not name one")
	cmd.Flags().IntP("concurrency", "c", 0, "Files processed in parallel")
	cmd.Flags().BoolP("json", "j", false, "Print the run as JSON")
	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	bucket, _ := flags.GetString("s3-bucket")
	prefix, _ := flags.GetString("s3-prefix")
	year, _ := flags.GetInt("default-year")
	conc, _ := flags.GetInt("concurrency")
	asJSON, _ := flags.GetBool("json")

	a, err := loadApp(cmd, func(c *config.Config) {
		switch {
		case bucket != "":
			c.Source.Driver = "s3"
			c.Source.S3Bucket = bucket
			c.Source.S3Prefix = prefix
		case dir != "":
			c.Source.Driver = "fs"
			c.Source.DataDir = dir
		}
		if year != 0 {
			c.DefaultYear = year
		}
		if conc > 0 {
			c.Concurrency = conc
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	src, err := a.Source(cmd.Context())
	if err != nil {
		return err
	}
	run, runErr := a.Service.ImportAll(cmd.Context(), src)
	if len(run.Files) > 0 {
		if err := writeRun(cmd, run, asJSON); err != nil {
			return err
		}
	}
	return runErr
}

func writeRun(cmd *cobra.Command, run service.RunResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}
	return report.Run(cmd.OutOrStdout(), run)
}

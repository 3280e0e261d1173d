package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ingest-service/internal/config"
	"ingest-service/internal/report"
	"ingest-service/internal/store"
)

func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check how much of a spreadsheet extraction would capture",
		Long: `Validate extracts FILE without storing anything and compares the
records with the numeric cells of the sheet. Coverage below 0.5 suggests
lost rows, above 2.0 suggests duplication.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			a, err := loadApp(cmd, func(c *config.Config) { c.Store.Driver = store.DriverMemory })
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rep, err := a.Service.Validate(filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			return report.Validation(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Print the report as JSON")
	return cmd
}

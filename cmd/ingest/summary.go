package main

import (
	"errors"

	"github.com/spf13/cobra"

	"ingest-service/internal/ingest/model"
	"ingest-service/internal/report"
	"ingest-service/internal/store"
)

func NewSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show consolidated totals per section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, nil)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			ctx := cmd.Context()
			sum, err := a.Store.Summary(ctx)
			if err != nil {
				return err
			}
			st, err := a.Store.Stats(ctx)
			if err != nil {
				return err
			}
			var idp *model.IdentificationRecord
			id, err := a.Store.LatestIdentification(ctx)
			switch {
			case err == nil:
				idp = &id
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
			return report.Summary(cmd.OutOrStdout(), sum, st, idp)
		},
	}
}

// Package store persists consolidated monthly metrics, identification
// snapshots and the import log.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"ingest-service/internal/ingest/model"
)

var (
	ErrClosed   = errors.New("store closed")
	ErrNotFound = errors.New("not found")
	// ErrInvalidRecord rejects records without a section or metric key.
	ErrInvalidRecord = errors.New("invalid record")
)

// Store is the consolidation target. Every write is additive: an existing
// (section, metric, year) row gets the incoming months and total added.
type Store interface {
	// Consolidate commits identification, every record and one import log
	// entry in a single transaction. On error nothing of the batch persists.
	Consolidate(ctx context.Context, b model.Batch) (model.Counts, error)
	Upsert(ctx context.Context, rec model.MetricRecord) (model.Outcome, error)

	Summary(ctx context.Context) ([]model.SectionSummary, error)
	Metrics(ctx context.Context, f model.MetricFilter) ([]model.MetricRecord, error)
	Imports(ctx context.Context, limit int) ([]model.ImportLogEntry, error)
	LatestIdentification(ctx context.Context) (model.IdentificationRecord, error)
	Stats(ctx context.Context) (model.Stats, error)

	Close() error
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Options struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// Open builds the store selected by opts.Driver.
func Open(ctx context.Context, opts Options, log zerolog.Logger) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverSQLite, "":
		path := opts.SQLitePath
		if path == "" {
			p, err := DefaultSQLitePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return OpenSQLite(ctx, path, log)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.PostgresDSN, log)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// DefaultSQLitePath is $XDG_DATA_HOME/ingest-service/ingest.db; parent
// directories are created.
func DefaultSQLitePath() (string, error) {
	p, err := xdg.DataFile("ingest-service/ingest.db")
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return p, nil
}

func validate(rec model.MetricRecord) error {
	if strings.TrimSpace(rec.Section) == "" || strings.TrimSpace(rec.Metric) == "" {
		return fmt.Errorf("%w: section=%q metric=%q", ErrInvalidRecord, rec.Section, rec.Metric)
	}
	return nil
}

func yearPtr(y int) *int {
	if y == 0 {
		return nil
	}
	return model.IntPtr(y)
}

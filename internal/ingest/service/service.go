// Package service drives one spreadsheet end to end: load, extract, resolve
// years, consolidate. ImportAll repeats that over a Source.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ingest-service/internal/fileio"
	"ingest-service/internal/grid"
	"ingest-service/internal/ingest/extract"
	"ingest-service/internal/ingest/model"
	"ingest-service/internal/metrics"
	"ingest-service/internal/source"
	"ingest-service/internal/store"
)

type Options struct {
	// DefaultYear applies to records when neither a year column nor the
	// identification block supplied one. nil leaves such records yearless.
	DefaultYear *int
	// Concurrency bounds ImportAll; <= 0 means 1.
	Concurrency int
}

type Service struct {
	ext     *extract.Extractor
	store   store.Store
	metrics *metrics.Metrics
	log     zerolog.Logger
	opts    Options
	newID   func() string
}

func New(ext *extract.Extractor, st store.Store, m *metrics.Metrics, log zerolog.Logger, opts Options) *Service {
	return &Service{
		ext:     ext,
		store:   st,
		metrics: m,
		log:     log,
		opts:    opts,
		newID:   func() string { return uuid.NewString() },
	}
}

// WithDefaultYear returns a copy that falls back to y instead.
func (s *Service) WithDefaultYear(y *int) *Service {
	c := *s
	c.opts.DefaultYear = y
	return &c
}

// SectionReport summarizes one detected section for callers.
type SectionReport struct {
	Title     string   `json:"title"`
	Key       string   `json:"key"`
	FirstRow  int      `json:"first_row"`
	LastRow   int      `json:"last_row"`
	DataStart int      `json:"data_start"`
	Header    []string `json:"header,omitempty"`
	Records   int      `json:"records"`
}

// FileResult is the outcome of one file. Err is set only on failure;
// NoData marks a file that loaded fine but yielded no records.
type FileResult struct {
	Source         string                     `json:"source"`
	BatchID        string                     `json:"batch_id,omitempty"`
	Identification model.IdentificationRecord `json:"identification"`
	Year           *int                       `json:"year"`
	Sections       []SectionReport            `json:"sections"`
	Records        int                        `json:"records"`
	Counts         model.Counts               `json:"counts"`
	NoData         bool                       `json:"no_data"`
	Warnings       []string                   `json:"warnings,omitempty"`
	Duration       time.Duration              `json:"duration_ns"`
	Err            error                      `json:"-"`
	Error          string                     `json:"error,omitempty"`
}

func (r FileResult) Failed() bool { return r.Err != nil }

// ImportFile loads r as filename and consolidates it. Failures are
// reported in the result, never returned, so callers can keep going.
func (s *Service) ImportFile(ctx context.Context, name string, r io.Reader) FileResult {
	start := time.Now()
	g, err := fileio.Load(r, name)
	if err != nil {
		res := FileResult{Source: name}
		return s.finish(res.fail(err), start)
	}
	return s.importGrid(ctx, name, g, start)
}

// ImportGrid consolidates an already loaded grid.
func (s *Service) ImportGrid(ctx context.Context, name string, g *grid.Grid) FileResult {
	return s.importGrid(ctx, name, g, time.Now())
}

func (s *Service) importGrid(ctx context.Context, name string, g *grid.Grid, start time.Time) FileResult {
	log := s.log.With().Str("file", name).Logger()
	log.Info().Int("rows", g.NumRows()).Int("cols", g.NumCols()).Msg("file loaded")

	ex := s.ext.Extract(g)
	res := FileResult{
		Source:         name,
		BatchID:        s.newID(),
		Identification: ex.Identification,
		Year:           s.resolveYear(ex.Identification),
		Records:        len(ex.Records),
	}
	for _, sr := range ex.Sections {
		rep := SectionReport{
			Title:     sr.Section.Title,
			Key:       sr.Section.Key,
			FirstRow:  sr.Section.Start,
			LastRow:   sr.Section.End - 1,
			DataStart: sr.Section.DataStart,
			Records:   sr.Records,
		}
		if sr.Header != nil {
			rep.Header = sr.Header.Keys()
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf("section %q has no month header, parsed positionally", rep.Title))
		}
		res.Sections = append(res.Sections, rep)
	}
	switch {
	case len(ex.Sections) == 0:
		res.NoData = true
		res.Warnings = append(res.Warnings, "no data sections found")
	case len(ex.Records) == 0:
		res.NoData = true
		res.Warnings = append(res.Warnings, "sections found but no records extracted")
	}
	if res.Year == nil && len(ex.Records) > 0 {
		res.Warnings = append(res.Warnings, "no reference year; records stored without year")
	}

	records := make([]model.MetricRecord, len(ex.Records))
	for i, rec := range ex.Records {
		if rec.Year == nil && res.Year != nil {
			rec.Year = model.IntPtr(*res.Year)
		}
		records[i] = rec
	}

	batch := model.Batch{ID: res.BatchID, Source: name, Records: records}
	if !ex.Identification.Empty() {
		id := ex.Identification
		batch.Identification = &id
	}
	counts, err := s.store.Consolidate(ctx, batch)
	if err != nil {
		return s.finish(res.fail(&model.ConsolidationWriteError{Source: name, Err: err}), start)
	}
	res.Counts = counts
	s.metrics.Records(counts.Inserted, counts.Updated)
	return s.finish(res, start)
}

func (s *Service) resolveYear(id model.IdentificationRecord) *int {
	if id.Year != nil {
		return model.IntPtr(*id.Year)
	}
	if s.opts.DefaultYear != nil {
		return model.IntPtr(*s.opts.DefaultYear)
	}
	return nil
}

func (r FileResult) fail(err error) FileResult {
	r.Err = err
	r.Error = err.Error()
	r.Counts = model.Counts{}
	return r
}

func (s *Service) finish(res FileResult, start time.Time) FileResult {
	res.Duration = time.Since(start)
	status := metrics.StatusOK
	switch {
	case res.Err != nil:
		status = metrics.StatusFailed
		s.log.Error().Err(res.Err).Str("file", res.Source).Msg("import failed")
	case res.NoData:
		status = metrics.StatusNoData
		s.log.Warn().Str("file", res.Source).Strs("warnings", res.Warnings).Msg("no data found")
	default:
		s.log.Info().Str("file", res.Source).Int("records", res.Records).
			Int("inserted", res.Counts.Inserted).Int("updated", res.Counts.Updated).
			Dur("elapsed", res.Duration).Msg("import done")
	}
	s.metrics.FileDone(status, res.Duration)
	return res
}

// RunResult aggregates a multi-file run; Files keeps listing order.
type RunResult struct {
	Files     []FileResult `json:"files"`
	Succeeded int          `json:"succeeded"`
	NoData    int          `json:"no_data"`
	Failed    int          `json:"failed"`
	Counts    model.Counts `json:"counts"`
}

// Tally classifies files and sums their counts.
func Tally(files []FileResult) RunResult {
	run := RunResult{Files: files}
	for _, f := range files {
		switch {
		case f.Failed():
			run.Failed++
		case f.NoData:
			run.NoData++
		default:
			run.Succeeded++
		}
		run.Counts.Inserted += f.Counts.Inserted
		run.Counts.Updated += f.Counts.Updated
	}
	return run
}

// ImportAll imports every file of src. One file failing never stops the
// others; the error is ErrNoFiles for an empty source and ErrAllFailed
// only when every file failed.
func (s *Service) ImportAll(ctx context.Context, src source.Source) (RunResult, error) {
	var run RunResult
	objs, err := src.List(ctx)
	if err != nil {
		return run, fmt.Errorf("list %s: %w", src, err)
	}
	if len(objs) == 0 {
		s.log.Warn().Str("source", src.String()).Msg("no spreadsheet files found")
		return run, model.ErrNoFiles
	}
	s.log.Info().Str("source", src.String()).Int("files", len(objs)).Msg("import run started")

	limit := s.opts.Concurrency
	if limit <= 0 {
		limit = 1
	}
	run.Files = make([]FileResult, len(objs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, obj := range objs {
		i, obj := i, obj
		g.Go(func() error {
			run.Files[i] = s.importObject(gctx, src, obj)
			return nil
		})
	}
	_ = g.Wait()

	run = Tally(run.Files)
	s.log.Info().Int("files", len(objs)).Int("succeeded", run.Succeeded).Int("no_data", run.NoData).
		Int("failed", run.Failed).Msg("import run finished")

	if run.Failed == len(objs) {
		errs := make([]error, 0, len(run.Files))
		for _, f := range run.Files {
			errs = append(errs, f.Err)
		}
		return run, fmt.Errorf("%w: %w", model.ErrAllFailed, errors.Join(errs...))
	}
	return run, nil
}

func (s *Service) importObject(ctx context.Context, src source.Source, obj source.Object) FileResult {
	return s.ImportFrom(ctx, obj.Name, func() (io.ReadCloser, error) { return src.Open(ctx, obj.Key) })
}

// ImportFrom opens the file through open and imports it. An open failure
// is reported, logged and counted like a load failure.
func (s *Service) ImportFrom(ctx context.Context, name string, open func() (io.ReadCloser, error)) FileResult {
	if err := ctx.Err(); err != nil {
		return s.finish(FileResult{Source: name}.fail(err), time.Now())
	}
	rc, err := open()
	if err != nil {
		return s.finish(FileResult{Source: name}.fail(&model.GridLoadError{Source: name, Err: err}), time.Now())
	}
	defer func() { _ = rc.Close() }()
	return s.ImportFile(ctx, name, rc)
}

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ingest-service/internal/ingest/model"
)

// Memory keeps everything in maps. Used by tests and the "memory" driver.
type Memory struct {
	mu      sync.Mutex
	closed  bool
	metrics map[model.Key]model.MetricRecord
	idents  []model.IdentificationRecord
	imports []model.ImportLogEntry
	now     func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{metrics: map[model.Key]model.MetricRecord{}, now: time.Now}
}

func (m *Memory) Consolidate(ctx context.Context, b model.Batch) (model.Counts, error) {
	var counts model.Counts
	if err := ctx.Err(); err != nil {
		return counts, err
	}
	// validate up front so a bad record leaves nothing behind
	for _, rec := range b.Records {
		if err := validate(rec); err != nil {
			return counts, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return counts, ErrClosed
	}
	ts := m.now().UTC()
	if b.Identification != nil && !b.Identification.Empty() {
		id := *b.Identification
		id.ID = int64(len(m.idents) + 1)
		id.ImportedAt = ts
		m.idents = append(m.idents, id)
	}
	for _, rec := range b.Records {
		counts.Add(m.upsertLocked(rec))
	}
	m.imports = append(m.imports, model.ImportLogEntry{
		ID:          int64(len(m.imports) + 1),
		BatchID:     b.ID,
		Source:      b.Source,
		RecordCount: len(b.Records),
		ImportedAt:  ts,
	})
	return counts, nil
}

func (m *Memory) Upsert(ctx context.Context, rec model.MetricRecord) (model.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := validate(rec); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	return m.upsertLocked(rec), nil
}

func (m *Memory) upsertLocked(rec model.MetricRecord) model.Outcome {
	k := rec.Key()
	cur, ok := m.metrics[k]
	if !ok {
		rec.Year = yearPtr(k.Year)
		m.metrics[k] = rec
		return model.Inserted
	}
	cur.Merge(rec)
	m.metrics[k] = cur
	return model.Updated
}

func (m *Memory) sorted() []model.MetricRecord {
	out := make([]model.MetricRecord, 0, len(m.metrics))
	for _, r := range m.metrics {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key(), out[j].Key()
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		if a.Metric != b.Metric {
			return a.Metric < b.Metric
		}
		return a.Year < b.Year
	})
	return out
}

func (m *Memory) Summary(ctx context.Context) ([]model.SectionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []model.SectionSummary
	for _, r := range m.sorted() {
		if len(out) == 0 || out[len(out)-1].Section != r.Section {
			out = append(out, model.SectionSummary{Section: r.Section})
		}
		s := &out[len(out)-1]
		s.Metrics++
		s.MonthlySum += r.Months.Sum()
		s.TotalSum += r.Total
	}
	for i := range out {
		out[i].AvgTotal = out[i].TotalSum / float64(out[i].Metrics)
	}
	return out, nil
}

func (m *Memory) Metrics(ctx context.Context, f model.MetricFilter) ([]model.MetricRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	var out []model.MetricRecord
	for _, r := range m.sorted() {
		if f.Section != "" && r.Section != f.Section {
			continue
		}
		if f.Year != nil && r.Key().Year != *f.Year {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) Imports(ctx context.Context, limit int) ([]model.ImportLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	limit = importLimit(limit)
	var out []model.ImportLogEntry
	for i := len(m.imports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.imports[i])
	}
	return out, nil
}

func (m *Memory) LatestIdentification(ctx context.Context) (model.IdentificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return model.IdentificationRecord{}, ErrClosed
	}
	if len(m.idents) == 0 {
		return model.IdentificationRecord{}, ErrNotFound
	}
	return m.idents[len(m.idents)-1], nil
}

func (m *Memory) Stats(ctx context.Context) (model.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return model.Stats{}, ErrClosed
	}
	st := model.Stats{Records: len(m.metrics)}
	sections, metrics := map[string]struct{}{}, map[string]struct{}{}
	for _, r := range m.metrics {
		sections[r.Section] = struct{}{}
		metrics[r.Metric] = struct{}{}
		st.MonthlySum += r.Months.Sum()
	}
	st.Sections, st.Metrics = len(sections), len(metrics)
	return st, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

const defaultImportLimit = 100

func importLimit(n int) int {
	if n <= 0 {
		return defaultImportLimit
	}
	return n
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ingest-service/internal/ingest/model"
)

// dialect carries the few places sqlite and postgres differ.
type dialect struct {
	name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
	idType   string
	realType string
	// returningInsert reports insert-vs-update from the upsert itself
	returningInsert string
}

var (
	sqliteDialect = dialect{
		name:     DriverSQLite,
		idType:   "INTEGER PRIMARY KEY AUTOINCREMENT",
		realType: "REAL",
	}
	postgresDialect = dialect{
		name:            DriverPostgres,
		numbered:        true,
		idType:          "BIGSERIAL PRIMARY KEY",
		realType:        "DOUBLE PRECISION",
		returningInsert: " RETURNING (xmax = 0)",
	}
)

// rebind rewrites ? placeholders for drivers that want $n.
func (d dialect) rebind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const monthCols = "m01, m02, m03, m04, m05, m06, m07, m08, m09, m10, m11, m12"

func (d dialect) schema() []string {
	var months strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&months, "\tm%02d %s NOT NULL DEFAULT 0,\n", i, d.realType)
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS identifications (
	id ` + d.idType + `,
	year INTEGER,
	unit TEXT,
	responsible TEXT,
	imported_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS monthly_metrics (
	id ` + d.idType + `,
	section TEXT NOT NULL CHECK (section <> ''),
	metric TEXT NOT NULL CHECK (metric <> ''),
	year INTEGER NOT NULL DEFAULT 0,
` + months.String() + `	total_annual ` + d.realType + ` NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL,
	UNIQUE (section, metric, year)
)`,
		`CREATE INDEX IF NOT EXISTS idx_monthly_metrics_section ON monthly_metrics (section)`,
		`CREATE TABLE IF NOT EXISTS import_log (
	id ` + d.idType + `,
	batch_id TEXT NOT NULL,
	source TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	imported_at TEXT NOT NULL
)`,
	}
}

func upsertSQL() string {
	var set strings.Builder
	for i := 1; i <= 12; i++ {
		fmt.Fprintf(&set, "m%02d = monthly_metrics.m%02d + excluded.m%02d, ", i, i, i)
	}
	return `INSERT INTO monthly_metrics (section, metric, year, ` + monthCols + `, total_annual, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (section, metric, year) DO UPDATE SET ` + set.String() + `
	total_annual = monthly_metrics.total_annual + excluded.total_annual,
	updated_at = excluded.updated_at`
}

// SQLStore implements Store over database/sql for sqlite and postgres.
type SQLStore struct {
	db      *sql.DB
	d       dialect
	log     zerolog.Logger
	closed  atomic.Bool
	upsertQ string
	now     func() time.Time
}

var _ Store = (*SQLStore)(nil)

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, log zerolog.Logger) (*SQLStore, error) {
	s := &SQLStore{
		db:      db,
		d:       d,
		log:     log.With().Str("store", d.name).Logger(),
		upsertQ: d.rebind(upsertSQL()) + d.returningInsert,
		now:     time.Now,
	}
	for _, stmt := range d.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return s, nil
}

// DB exposes the handle for tests and maintenance commands.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) check() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (s *SQLStore) stamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *SQLStore) Consolidate(ctx context.Context, b model.Batch) (counts model.Counts, retErr error) {
	if err := s.check(); err != nil {
		return counts, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return counts, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
			counts = model.Counts{}
		}
	}()

	ts := s.stamp()
	if b.Identification != nil && !b.Identification.Empty() {
		id := b.Identification
		if _, err := tx.ExecContext(ctx, s.d.rebind(
			`INSERT INTO identifications (year, unit, responsible, imported_at) VALUES (?, ?, ?, ?)`),
			nullInt(id.Year), nullString(id.Unit), nullString(id.Responsible), ts); err != nil {
			return counts, fmt.Errorf("insert identification: %w", err)
		}
	}
	for _, rec := range b.Records {
		o, err := s.upsertTx(ctx, tx, rec, ts)
		if err != nil {
			return counts, err
		}
		counts.Add(o)
	}
	if _, err := tx.ExecContext(ctx, s.d.rebind(
		`INSERT INTO import_log (batch_id, source, record_count, imported_at) VALUES (?, ?, ?, ?)`),
		b.ID, b.Source, len(b.Records), ts); err != nil {
		return counts, fmt.Errorf("insert import log: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return counts, fmt.Errorf("commit: %w", err)
	}
	s.log.Debug().Str("source", b.Source).Int("inserted", counts.Inserted).Int("updated", counts.Updated).
		Msg("batch committed")
	return counts, nil
}

func (s *SQLStore) Upsert(ctx context.Context, rec model.MetricRecord) (out model.Outcome, retErr error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	out, err = s.upsertTx(ctx, tx, rec, s.stamp())
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (s *SQLStore) upsertTx(ctx context.Context, tx *sql.Tx, rec model.MetricRecord, ts string) (model.Outcome, error) {
	if err := validate(rec); err != nil {
		return 0, err
	}
	k := rec.Key()
	args := make([]any, 0, 17)
	args = append(args, k.Section, k.Metric, k.Year)
	for _, v := range rec.Months {
		args = append(args, v)
	}
	args = append(args, rec.Total, ts)

	if s.d.returningInsert != "" {
		var inserted bool
		if err := tx.QueryRowContext(ctx, s.upsertQ, args...).Scan(&inserted); err != nil {
			return 0, fmt.Errorf("upsert %s/%s: %w", k.Section, k.Metric, err)
		}
		if inserted {
			return model.Inserted, nil
		}
		return model.Updated, nil
	}

	// single writer connection: the probe and the upsert see the same state
	var n int
	if err := tx.QueryRowContext(ctx, s.d.rebind(
		`SELECT COUNT(*) FROM monthly_metrics WHERE section = ? AND metric = ? AND year = ?`),
		k.Section, k.Metric, k.Year).Scan(&n); err != nil {
		return 0, fmt.Errorf("probe %s/%s: %w", k.Section, k.Metric, err)
	}
	if _, err := tx.ExecContext(ctx, s.upsertQ, args...); err != nil {
		return 0, fmt.Errorf("upsert %s/%s: %w", k.Section, k.Metric, err)
	}
	if n > 0 {
		return model.Updated, nil
	}
	return model.Inserted, nil
}

const monthSum = "m01 + m02 + m03 + m04 + m05 + m06 + m07 + m08 + m09 + m10 + m11 + m12"

func (s *SQLStore) Summary(ctx context.Context) ([]model.SectionSummary, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT section, COUNT(*), COALESCE(SUM(`+monthSum+`), 0),
	COALESCE(SUM(total_annual), 0), COALESCE(AVG(total_annual), 0)
FROM monthly_metrics GROUP BY section ORDER BY section`)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.SectionSummary
	for rows.Next() {
		var ss model.SectionSummary
		if err := rows.Scan(&ss.Section, &ss.Metrics, &ss.MonthlySum, &ss.TotalSum, &ss.AvgTotal); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

func (s *SQLStore) Metrics(ctx context.Context, f model.MetricFilter) ([]model.MetricRecord, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	var (
		where []string
		args  []any
	)
	if f.Section != "" {
		where = append(where, "section = ?")
		args = append(args, f.Section)
	}
	if f.Year != nil {
		where = append(where, "year = ?")
		args = append(args, *f.Year)
	}
	q := `SELECT section, metric, year, ` + monthCols + `, total_annual FROM monthly_metrics`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY section, metric, year"

	rows, err := s.db.QueryContext(ctx, s.d.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.MetricRecord
	for rows.Next() {
		var (
			r    model.MetricRecord
			year int
		)
		dest := []any{&r.Section, &r.Metric, &year}
		for i := range r.Months {
			dest = append(dest, &r.Months[i])
		}
		dest = append(dest, &r.Total)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		r.Year = yearPtr(year)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) Imports(ctx context.Context, limit int) ([]model.ImportLogEntry, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.d.rebind(
		`SELECT id, batch_id, source, record_count, imported_at FROM import_log ORDER BY id DESC LIMIT ?`),
		importLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ImportLogEntry
	for rows.Next() {
		var (
			e  model.ImportLogEntry
			ts string
		)
		if err := rows.Scan(&e.ID, &e.BatchID, &e.Source, &e.RecordCount, &ts); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		e.ImportedAt = parseStamp(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) LatestIdentification(ctx context.Context) (model.IdentificationRecord, error) {
	var rec model.IdentificationRecord
	if err := s.check(); err != nil {
		return rec, err
	}
	var (
		year       sql.NullInt64
		unit, resp sql.NullString
		ts         string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, year, unit, responsible, imported_at FROM identifications ORDER BY id DESC LIMIT 1`).
		Scan(&rec.ID, &year, &unit, &resp, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("identification: %w", err)
	}
	if year.Valid {
		rec.Year = model.IntPtr(int(year.Int64))
	}
	if unit.Valid {
		rec.Unit = model.StrPtr(unit.String)
	}
	if resp.Valid {
		rec.Responsible = model.StrPtr(resp.String)
	}
	rec.ImportedAt = parseStamp(ts)
	return rec, nil
}

func (s *SQLStore) Stats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	if err := s.check(); err != nil {
		return st, err
	}
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT section), COUNT(DISTINCT metric),
	COALESCE(SUM(`+monthSum+`), 0) FROM monthly_metrics`).
		Scan(&st.Records, &st.Sections, &st.Metrics, &st.MonthlySum)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

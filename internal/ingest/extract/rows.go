package extract

import (
	"strings"

	"github.com/rs/zerolog"

	"ingest-service/internal/grid"
	"ingest-service/internal/ingest/model"
)

// RowParser turns section rows into metric records.
type RowParser struct {
	filter Filter
	log    zerolog.Logger
}

func NewRowParser(f Filter, log zerolog.Logger) RowParser {
	return RowParser{filter: f, log: log}
}

// metricName returns the trimmed label of row r, or false when the row
// has no usable label, the label is on the ignore list, or the row is an
// ignored section title such as "Observações".
func (p RowParser) metricName(g *grid.Grid, r int) (string, bool) {
	first := g.At(r, 0)
	if !first.IsText() {
		return "", false
	}
	name := strings.TrimSpace(first.Text)
	if g.IsTitleCandidate(r) && p.filter.IgnoreSection(name) {
		p.log.Debug().Str("title", name).Int("row", r).Msg("ignored title inside section")
		return "", false
	}
	if p.filter.IgnoreMetric(name) {
		p.log.Debug().Str("metric", name).Int("row", r).Msg("metric ignored")
		return "", false
	}
	return name, true
}

// WithHeader parses every row below the header. Rows whose cells are all
// zero or blank are kept as zero-valued records.
func (p RowParser) WithHeader(g *grid.Grid, sec Section, h Header) []model.MetricRecord {
	var out []model.MetricRecord
	for _, r := range sec.Rows() {
		if r <= h.Row {
			continue
		}
		name, ok := p.metricName(g, r)
		if !ok {
			continue
		}
		rec := model.MetricRecord{Section: sec.Key, Metric: name}
		for i := 1; i < len(h.Columns); i++ {
			col := h.Columns[i]
			switch col.Kind {
			case ColumnYear:
				rec.Year = model.IntPtr(col.Year)
			case ColumnMonth:
				rec.Months[col.Month] = ParseNumberOrZero(g.At(r, i))
			case ColumnTotal:
				rec.Total = ParseNumberOrZero(g.At(r, i))
			}
		}
		rec.FinalizeTotal()
		out = append(out, rec)
	}
	return out
}

// Positional handles sections without a month header: positive numbers
// at column offset 1..12 fill the months in order, anything further right
// is the annual total. Rows without a positive number are dropped.
func (p RowParser) Positional(g *grid.Grid, sec Section) []model.MetricRecord {
	var out []model.MetricRecord
	for _, r := range sec.Rows() {
		if g.NonEmpty(r) < 2 {
			continue
		}
		name, ok := p.metricName(g, r)
		if !ok {
			continue
		}
		rec := model.MetricRecord{Section: sec.Key, Metric: name}
		found, hasTotal := 0, false
		for i := 1; i < g.NumCols(); i++ {
			v, ok := g.At(r, i).Number()
			if !ok || v <= 0 {
				continue
			}
			found++
			if i <= len(rec.Months) {
				rec.Months[i-1] = v
			} else {
				rec.Total = v
				hasTotal = true
			}
		}
		if found == 0 {
			continue
		}
		if !hasTotal {
			rec.Total = rec.Months.Sum()
		}
		out = append(out, rec)
	}
	return out
}

package extract

import (
	"regexp"
	"strconv"
	"strings"

	"ingest-service/internal/grid"
)

type ColumnKind int

const (
	ColumnOther ColumnKind = iota
	ColumnMonth
	ColumnYear
	ColumnTotal
)

// Column is one positional header key with its resolved meaning.
type Column struct {
	Key   string
	Kind  ColumnKind
	Month int // 0-based, ColumnMonth only
	Year  int // ColumnYear only
}

// Header is the month header row of a section.
type Header struct {
	Row     int
	Columns []Column // aligned to grid columns
}

func (h Header) Keys() []string {
	out := make([]string, len(h.Columns))
	for i, c := range h.Columns {
		out[i] = c.Key
	}
	return out
}

var reYear = regexp.MustCompile(`^\d{4}$`)

// ColumnMapper finds a section's header row and maps its cells to keys.
type ColumnMapper struct {
	vocab Vocabulary
}

func NewColumnMapper(v Vocabulary) ColumnMapper { return ColumnMapper{vocab: v} }

// Find returns the first row in rows whose text mentions a month code.
func (m ColumnMapper) Find(g *grid.Grid, rows []int) (Header, bool) {
	for _, r := range rows {
		if m.vocab.mentionsMonth(strings.ToLower(g.RowString(r))) {
			return Header{Row: r, Columns: m.Map(g.Row(r))}, true
		}
	}
	return Header{}, false
}

// Map resolves each header cell positionally.
func (m ColumnMapper) Map(cells []grid.Cell) []Column {
	out := make([]Column, len(cells))
	for i, c := range cells {
		out[i] = m.resolve(c)
	}
	return out
}

func (m ColumnMapper) resolve(c grid.Cell) Column {
	// real date cells in a header row name their month
	if c.Kind == grid.Date {
		mi := int(c.Time.Month()) - 1
		return Column{Key: m.vocab.Months[mi], Kind: ColumnMonth, Month: mi}
	}
	key := ColumnKey(c)
	switch {
	case reYear.MatchString(key):
		y, _ := strconv.Atoi(key)
		return Column{Key: key, Kind: ColumnYear, Year: y}
	case m.vocab.isTotal(key):
		return Column{Key: key, Kind: ColumnTotal}
	}
	if mi, ok := m.vocab.monthIndex(key); ok {
		return Column{Key: key, Kind: ColumnMonth, Month: mi}
	}
	return Column{Key: key}
}

// Package grid is a read-only rectangular view over the cells of one worksheet.
package grid

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the scalar type of a cell.
type Kind uint8

const (
	Empty Kind = iota
	Text
	Number
	Date
	Bool
)

// Cell holds one scalar value. Only the field matching Kind is meaningful,
// except Text which always carries the value as the sheet displayed it.
type Cell struct {
	Kind Kind
	Text string
	Num  float64
	Time time.Time
}

func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: Text, Text: s}
}

func NumberCell(f float64) Cell {
	return Cell{Kind: Number, Num: f, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

func DateCell(t time.Time) Cell {
	return Cell{Kind: Date, Time: t, Text: t.Format("2006-01-02")}
}

func BoolCell(b bool) Cell {
	return Cell{Kind: Bool, Text: strconv.FormatBool(b)}
}

func (c Cell) IsEmpty() bool {
	return c.Kind == Empty || (c.Kind == Text && strings.TrimSpace(c.Text) == "")
}

func (c Cell) IsText() bool { return c.Kind == Text && strings.TrimSpace(c.Text) != "" }

// Number returns the cell value when the cell is natively numeric.
// Text that merely looks like a number is not converted.
func (c Cell) Number() (float64, bool) {
	if c.Kind != Number {
		return 0, false
	}
	return c.Num, true
}

// LooksNumeric reports whether the cell is numeric or is text made of digits only.
func (c Cell) LooksNumeric() bool {
	if c.Kind == Number {
		return true
	}
	if c.Kind != Text {
		return false
	}
	s := strings.TrimSpace(c.Text)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c Cell) String() string {
	if c.Kind == Empty {
		return ""
	}
	return c.Text
}

// Grid is immutable once built.
type Grid struct {
	rows [][]Cell
	cols int
}

// New takes ownership of rows; rows may be ragged.
func New(rows [][]Cell) *Grid {
	g := &Grid{rows: rows}
	for _, r := range rows {
		if len(r) > g.cols {
			g.cols = len(r)
		}
	}
	return g
}

// FromValues builds a grid from plain Go values: nil, string, ints, floats,
// time.Time and bool. Anything else is rendered as text.
func FromValues(rows [][]any) *Grid {
	out := make([][]Cell, len(rows))
	for i, r := range rows {
		cells := make([]Cell, len(r))
		for j, v := range r {
			cells[j] = valueCell(v)
		}
		out[i] = cells
	}
	return New(out)
}

func valueCell(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return x
	case string:
		return TextCell(x)
	case int:
		return NumberCell(float64(x))
	case int64:
		return NumberCell(float64(x))
	case float64:
		return NumberCell(x)
	case float32:
		return NumberCell(float64(x))
	case time.Time:
		return DateCell(x)
	case bool:
		return BoolCell(x)
	default:
		return TextCell(strings.TrimSpace(toString(x)))
	}
}

func toString(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

func (g *Grid) NumRows() int { return len(g.rows) }

func (g *Grid) NumCols() int { return g.cols }

// At returns the cell at (r, c); out-of-range positions read as empty.
func (g *Grid) At(r, c int) Cell {
	if r < 0 || r >= len(g.rows) || c < 0 || c >= len(g.rows[r]) {
		return Cell{}
	}
	return g.rows[r][c]
}

// Row returns the cells of row r padded to NumCols.
func (g *Grid) Row(r int) []Cell {
	out := make([]Cell, g.cols)
	if r >= 0 && r < len(g.rows) {
		copy(out, g.rows[r])
	}
	return out
}

// NonEmpty counts the non-empty cells in row r.
func (g *Grid) NonEmpty(r int) int {
	if r < 0 || r >= len(g.rows) {
		return 0
	}
	n := 0
	for _, c := range g.rows[r] {
		if !c.IsEmpty() {
			n++
		}
	}
	return n
}

// RowString joins the non-empty cells of row r with single spaces.
func (g *Grid) RowString(r int) string {
	if r < 0 || r >= len(g.rows) {
		return ""
	}
	parts := make([]string, 0, len(g.rows[r]))
	for _, c := range g.rows[r] {
		if !c.IsEmpty() {
			parts = append(parts, strings.TrimSpace(c.String()))
		}
	}
	return strings.Join(parts, " ")
}

// IsTitleCandidate: exactly one non-empty cell and it sits in the first column.
func (g *Grid) IsTitleCandidate(r int) bool {
	return g.NonEmpty(r) == 1 && !g.At(r, 0).IsEmpty()
}

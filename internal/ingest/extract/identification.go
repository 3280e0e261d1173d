package extract

import (
	"math"
	"strconv"
	"strings"

	"ingest-service/internal/grid"
	"ingest-service/internal/ingest/model"
)

// IdentificationExtractor reads the labeled block at the top of a sheet:
// label in the first column, value in IdentificationCol.
type IdentificationExtractor struct {
	vocab Vocabulary
}

func NewIdentificationExtractor(v Vocabulary) IdentificationExtractor {
	return IdentificationExtractor{vocab: v}
}

// Extract scans the first IdentificationRows rows. Label lists are ordered
// most specific first: a match on a more specific label beats a broader
// one, and among equal labels the later row wins. Empty values never
// replace a found one; labels that never appear stay nil.
func (e IdentificationExtractor) Extract(g *grid.Grid) model.IdentificationRecord {
	var rec model.IdentificationRecord
	yearRank, unitRank, respRank := noMatch, noMatch, noMatch
	limit := min(e.vocab.IdentificationRows, g.NumRows())
	for r := 0; r < limit; r++ {
		first := g.At(r, 0)
		if first.IsEmpty() {
			continue
		}
		label := strings.ToLower(first.String())
		val := g.At(r, e.vocab.IdentificationCol)
		if rank := labelRank(label, e.vocab.YearLabels); rank != noMatch {
			if y := yearOf(val); y != nil && rank <= yearRank {
				rec.Year, yearRank = y, rank
			}
			continue
		}
		if rank := labelRank(label, e.vocab.UnitLabels); rank != noMatch {
			if u := textOf(val); u != nil && rank <= unitRank {
				rec.Unit, unitRank = u, rank
			}
			continue
		}
		if rank := labelRank(label, e.vocab.ResponsibleLabels); rank != noMatch {
			if v := textOf(val); v != nil && rank <= respRank {
				rec.Responsible, respRank = v, rank
			}
		}
	}
	return rec
}

const noMatch = math.MaxInt

// labelRank is the index of the first phrase contained in label, or
// noMatch.
func labelRank(label string, phrases []string) int {
	for i, p := range phrases {
		if strings.Contains(label, strings.ToLower(p)) {
			return i
		}
	}
	return noMatch
}

func yearOf(c grid.Cell) *int {
	switch c.Kind {
	case grid.Number:
		if c.Num == math.Trunc(c.Num) {
			return model.IntPtr(int(c.Num))
		}
	case grid.Date:
		return model.IntPtr(c.Time.Year())
	case grid.Text:
		if y, err := strconv.Atoi(strings.TrimSpace(c.Text)); err == nil {
			return model.IntPtr(y)
		}
	}
	return nil
}

func textOf(c grid.Cell) *string {
	if c.IsEmpty() {
		return nil
	}
	return model.StrPtr(strings.TrimSpace(c.String()))
}

package extract

import (
	"strings"

	"github.com/rs/zerolog"

	"ingest-service/internal/grid"
)

// Section is one titled block of rows.
type Section struct {
	Title string // as written in the sheet
	Key   string // SectionKey(Title)
	Start int    // title row
	End   int    // exclusive
	// DataStart is the first row that looked like data (month names or
	// numbers), -1 if none. Diagnostic only: Rows always spans Start..End.
	DataStart int
}

// Rows returns the scan window handed to the column mapper and row parser.
func (s Section) Rows() []int {
	out := make([]int, 0, s.End-s.Start)
	for r := s.Start; r < s.End; r++ {
		out = append(out, r)
	}
	return out
}

// SectionDetector partitions a grid into titled sections.
type SectionDetector struct {
	vocab  Vocabulary
	filter Filter
	log    zerolog.Logger
}

func NewSectionDetector(v Vocabulary, f Filter, log zerolog.Logger) SectionDetector {
	return SectionDetector{vocab: v, filter: f, log: log}
}

// IsDataTitle: not ignored, and either carries a section keyword or is
// one of the known titles that lack one. title must be lowercased.
func (d SectionDetector) IsDataTitle(title string) bool {
	if d.filter.IgnoreSection(title) {
		return false
	}
	return containsAny(title, d.vocab.SectionKeywords) ||
		containsExact(d.vocab.SectionTitles, strings.TrimSpace(title))
}

// Detect walks the grid top to bottom.
//
// A section opens on an accepted title row and closes at the next accepted
// title or at the end of the grid; ignored titles neither open nor close
// one. A section always owns the full span from its title row up to the
// closing row. A repeated title replaces the earlier section's rows but keeps its position.
func (d SectionDetector) Detect(g *grid.Grid) []Section {
	var (
		out   []Section
		index = map[string]int{}
		cur   *Section
	)
	closeAt := func(end int) {
		if cur == nil {
			return
		}
		cur.End = end
		d.log.Debug().Str("section", cur.Title).Int("from", cur.Start).Int("to", end-1).
			Int("data_start", cur.DataStart).Msg("section closed")
		if i, ok := index[cur.Title]; ok {
			out[i] = *cur
		} else {
			index[cur.Title] = len(out)
			out = append(out, *cur)
		}
		cur = nil
	}

	for r := 0; r < g.NumRows(); r++ {
		if g.IsTitleCandidate(r) {
			title := strings.TrimSpace(g.At(r, 0).String())
			lower := strings.ToLower(title)
			if d.filter.IgnoreSection(lower) {
				d.log.Info().Str("title", title).Int("row", r).Msg("section ignored")
				continue
			}
			if !d.IsDataTitle(lower) {
				continue
			}
			closeAt(r)
			cur = &Section{Title: title, Key: SectionKey(title), Start: r, DataStart: -1}
			d.log.Info().Str("section", title).Int("row", r).Msg("section opened")
			continue
		}
		if cur != nil && cur.DataStart < 0 && g.NonEmpty(r) > 2 && d.looksLikeData(g, r) {
			cur.DataStart = r
		}
	}
	closeAt(g.NumRows())
	return out
}

func (d SectionDetector) looksLikeData(g *grid.Grid, r int) bool {
	if d.vocab.mentionsMonth(strings.ToLower(g.RowString(r))) {
		return true
	}
	for c := 1; c < g.NumCols(); c++ {
		if g.At(r, c).LooksNumeric() {
			return true
		}
	}
	return false
}

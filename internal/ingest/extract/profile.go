package extract

import (
	"strings"

	"ingest-service/internal/grid"
)

// TitleCandidate is a single-cell row that could name a section.
type TitleCandidate struct {
	Row      int    `json:"row"`
	Title    string `json:"title"`
	Accepted bool   `json:"accepted"`
}

// GridProfile is a raw census of a sheet, used to judge extraction coverage.
type GridProfile struct {
	Rows            int              `json:"rows"`
	Cols            int              `json:"cols"`
	NonEmptyCells   int              `json:"non_empty_cells"`
	NumericCells    int              `json:"numeric_cells"`
	TitleCandidates []TitleCandidate `json:"title_candidates"`
}

// Profile counts cells and lists title candidates with the detector's verdict.
func (e *Extractor) Profile(g *grid.Grid) GridProfile {
	p := GridProfile{Rows: g.NumRows(), Cols: g.NumCols()}
	for r := 0; r < g.NumRows(); r++ {
		for c := 0; c < g.NumCols(); c++ {
			cell := g.At(r, c)
			if cell.IsEmpty() {
				continue
			}
			p.NonEmptyCells++
			if cell.LooksNumeric() {
				p.NumericCells++
			}
		}
		if g.IsTitleCandidate(r) {
			title := strings.TrimSpace(g.At(r, 0).String())
			p.TitleCandidates = append(p.TitleCandidates, TitleCandidate{
				Row:      r,
				Title:    title,
				Accepted: e.detector.IsDataTitle(strings.ToLower(title)),
			})
		}
	}
	return p
}

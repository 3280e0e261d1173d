package service

import (
	"io"
	"strings"

	"ingest-service/internal/fileio"
	"ingest-service/internal/grid"
	"ingest-service/internal/ingest/extract"
)

// Coverage bands for Report.Quality.
const (
	CoverageLow  = 0.5
	CoverageHigh = 2.0
)

const (
	QualityOK      = "ok"
	QualityLow     = "low"     // likely data loss
	QualityHigh    = "high"    // likely duplication
	QualityUnknown = "unknown" // no numeric cells to compare against
)

// Report compares what a sheet holds with what extraction produced.
type Report struct {
	Source  string              `json:"source"`
	Profile extract.GridProfile `json:"profile"`

	Sections  []SectionReport `json:"sections"`
	Records   int             `json:"records"`
	ValueSum  float64         `json:"value_sum"`
	Coverage  float64         `json:"coverage"` // records*12 / numeric cells
	Quality   string          `json:"quality"`
	Unmatched []string        `json:"unmatched_titles,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// Validate loads and extracts name without writing anything.
func (s *Service) Validate(name string, r io.Reader) (Report, error) {
	g, err := fileio.Load(r, name)
	if err != nil {
		return Report{Source: name}, err
	}
	return s.ValidateGrid(name, g), nil
}

func (s *Service) ValidateGrid(name string, g *grid.Grid) Report {
	prof := s.ext.Profile(g)
	ex := s.ext.Extract(g)
	rep := Report{Source: name, Profile: prof, Records: len(ex.Records)}

	produced := map[string]bool{}
	for _, sr := range ex.Sections {
		sec := SectionReport{
			Title:     sr.Section.Title,
			Key:       sr.Section.Key,
			FirstRow:  sr.Section.Start,
			LastRow:   sr.Section.End - 1,
			DataStart: sr.Section.DataStart,
			Records:   sr.Records,
		}
		if sr.Header != nil {
			sec.Header = sr.Header.Keys()
		}
		rep.Sections = append(rep.Sections, sec)
		if sr.Records > 0 {
			produced[strings.ToLower(sr.Section.Title)] = true
		}
	}
	for _, rec := range ex.Records {
		rep.ValueSum += rec.Months.Sum()
	}
	for _, tc := range prof.TitleCandidates {
		if tc.Accepted && !produced[strings.ToLower(tc.Title)] {
			rep.Unmatched = append(rep.Unmatched, tc.Title)
		}
	}

	switch {
	case rep.Records == 0:
		rep.Warnings = append(rep.Warnings, "no records extracted")
	case rep.ValueSum == 0:
		rep.Warnings = append(rep.Warnings, "all extracted values are zero")
	}
	rep.Coverage, rep.Quality = coverage(rep.Records, prof.NumericCells)
	switch rep.Quality {
	case QualityLow:
		rep.Warnings = append(rep.Warnings, "low coverage: possible data loss")
	case QualityHigh:
		rep.Warnings = append(rep.Warnings, "high coverage: possible duplication")
	}
	return rep
}

func coverage(records, numericCells int) (float64, string) {
	if numericCells == 0 {
		return 0, QualityUnknown
	}
	c := float64(records*12) / float64(numericCells)
	switch {
	case c < CoverageLow:
		return c, QualityLow
	case c > CoverageHigh:
		return c, QualityHigh
	default:
		return c, QualityOK
	}
}

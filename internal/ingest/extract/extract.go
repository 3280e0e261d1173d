// Package extract finds titled sections in a free-form sheet and turns
// their rows into monthly metric records.
package extract

import (
	"github.com/rs/zerolog"

	"ingest-service/internal/grid"
	"ingest-service/internal/ingest/model"
)

// Extractor wires the extraction steps around one vocabulary.
type Extractor struct {
	vocab    Vocabulary
	filter   Filter
	detector SectionDetector
	mapper   ColumnMapper
	parser   RowParser
	ident    IdentificationExtractor
	log      zerolog.Logger
}

func New(v Vocabulary, log zerolog.Logger) *Extractor {
	f := NewFilter(v)
	return &Extractor{
		vocab:    v,
		filter:   f,
		detector: NewSectionDetector(v, f, log),
		mapper:   NewColumnMapper(v),
		parser:   NewRowParser(f, log),
		ident:    NewIdentificationExtractor(v),
		log:      log,
	}
}

func (e *Extractor) Vocabulary() Vocabulary { return e.vocab }

func (e *Extractor) Filter() Filter { return e.filter }

// SectionResult is what one section yielded.
type SectionResult struct {
	Section Section
	Header  *Header // nil when the positional fallback was used
	Records int
}

// Result of extracting one grid.
type Result struct {
	Identification model.IdentificationRecord
	Sections       []SectionResult
	Records        []model.MetricRecord
}

// NoData reports a grid that loaded fine but yielded nothing.
func (r Result) NoData() bool {
	return len(r.Sections) == 0 || len(r.Records) == 0
}

// Extract runs identification, section detection and row parsing.
func (e *Extractor) Extract(g *grid.Grid) Result {
	res := Result{Identification: e.ident.Extract(g)}

	for _, sec := range e.detector.Detect(g) {
		var (
			recs []model.MetricRecord
			sr   = SectionResult{Section: sec}
		)
		if h, ok := e.mapper.Find(g, sec.Rows()); ok {
			sr.Header = &h
			e.log.Debug().Str("section", sec.Title).Strs("headers", h.Keys()).Msg("header found")
			recs = e.parser.WithHeader(g, sec, h)
		} else {
			e.log.Warn().Str("section", sec.Title).Msg("no month header, using positional fallback")
			recs = e.parser.Positional(g, sec)
		}
		sr.Records = len(recs)
		e.log.Info().Str("section", sec.Title).Int("records", len(recs)).Msg("section parsed")
		res.Sections = append(res.Sections, sr)
		res.Records = append(res.Records, recs...)
	}
	return res
}

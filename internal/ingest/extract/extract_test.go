package extract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingest-service/internal/grid"
)

var monthCodes = []string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

func monthHeader() []any {
	h := []any{""}
	for _, m := range monthCodes {
		h = append(h, m)
	}
	return append(h, "total")
}

// dataRow pads month values to 12 and appends the total cell.
func dataRow(name string, total any, months ...any) []any {
	r := []any{name}
	for i := 0; i < 12; i++ {
		if i < len(months) {
			r = append(r, months[i])
		} else {
			r = append(r, 0)
		}
	}
	return append(r, total)
}

func newExtractor() *Extractor {
	return New(DefaultVocabulary(), zerolog.Nop())
}

func TestFilter(t *testing.T) {
	f := NewFilter(DefaultVocabulary())

	for _, name := range []string{
		"Total",
		"SUBTOTAL geral",
		"Soma dos casos",
		"Nº total de crianças protegidas",
		"Múltiplas Ameaças relacionadas à Abrangência do Tráfico",
		"multiplas ameacas relacionadas a abrangencia do trafico",
	} {
		assert.True(t, f.IgnoreMetric(name), name)
	}
	assert.False(t, f.IgnoreMetric("Nº de crianças protegidas"))
	assert.False(t, f.IgnoreMetric(""))
	assert.False(t, f.IgnoreMetric("   "))

	assert.True(t, f.IgnoreSection("Comentários Adicionais"))
	assert.True(t, f.IgnoreSection("comentarios adicionais"))
	assert.True(t, f.IgnoreSection("OBSERVAÇÕES"))
	assert.False(t, f.IgnoreSection("Perfil por sexo"))
	assert.False(t, f.IgnoreSection(""))
}

func TestDetectSections(t *testing.T) {
	g := grid.FromValues([][]any{
		{"Identificação"},
		{"Ano Referência", nil, 2025},
		{"Informações sobre Pessoas Protegidas"},
		monthHeader(),
		dataRow("Nº de crianças protegidas", nil, 3, 2),
		{"Perfil por sexo"},
		{"Feminino", 1, 2},
		{"Comentários Adicionais"},
		{"Texto livre do relatório"},
	})

	secs := newExtractor().detector.Detect(g)
	require.Len(t, secs, 2)

	assert.Equal(t, "Informações sobre Pessoas Protegidas", secs[0].Title)
	assert.Equal(t, "informacoes_sobre_pessoas_protegidas", secs[0].Key)
	assert.Equal(t, []int{2, 3, 4}, secs[0].Rows())
	assert.Equal(t, 3, secs[0].DataStart)

	assert.Equal(t, "perfil_por_sexo", secs[1].Key)
	assert.Equal(t, []int{5, 6, 7, 8}, secs[1].Rows(), "ignored title does not close the open section")
}

func TestRowsAfterIgnoredTitleAreKept(t *testing.T) {
	g := grid.FromValues([][]any{
		{"Perfil por sexo"},
		monthHeader(),
		dataRow("Feminino", nil, 3, 2),
		{"Observações"},
		dataRow("Masculino", nil, 4, 1),
	})
	secs := newExtractor().detector.Detect(g)
	require.Len(t, secs, 1)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, secs[0].Rows())

	res := newExtractor().Extract(g)
	require.Len(t, res.Records, 2, "the ignored title row is not a metric")
	assert.Equal(t, "Feminino", res.Records[0].Metric)
	assert.Equal(t, "Masculino", res.Records[1].Metric)
	assert.Equal(t, 4.0, res.Records[1].Months[0])
	assert.Equal(t, 5.0, res.Records[1].Total)
}

func TestDetectIgnoredTitleNeverOpensSection(t *testing.T) {
	// "informações" is a keyword, but the ignore list wins.
	g := grid.FromValues([][]any{
		{"Informações gerais"},
		monthHeader(),
		dataRow("Casos", nil, 1),
	})
	assert.Empty(t, newExtractor().detector.Detect(g))
}

func TestDetectRepeatedTitleReplacesRows(t *testing.T) {
	g := grid.FromValues([][]any{
		{"Perfil por sexo"},
		{"a", 1, 2},
		{"Motivo do desligamento"},
		{"b", 1, 2},
		{"Perfil por sexo"},
		{"c", 3, 4},
	})
	secs := newExtractor().detector.Detect(g)
	require.Len(t, secs, 2)
	assert.Equal(t, "Perfil por sexo", secs[0].Title)
	assert.Equal(t, []int{4, 5}, secs[0].Rows())
	assert.Equal(t, []int{2, 3}, secs[1].Rows())
}

// Sections keep their full span from the title row: rows before the first
// data-looking row are still scanned. This is the chosen closing rule.
func TestDetectKeepsFullSpanRegardlessOfDataStart(t *testing.T) {
	g := grid.FromValues([][]any{
		{"Perfil por idade"},
		{"nota", "x"},
		{"", "jan", "fev", "total"},
		{"0 a 11 anos", 1, 1, nil},
		{"Tempo de permanência"},
		{"nota", "y"},
		{"até 6 meses", 1, 2, 3},
	})
	secs := newExtractor().detector.Detect(g)
	require.Len(t, secs, 2)
	assert.Equal(t, 2, secs[0].DataStart)
	assert.Equal(t, []int{0, 1, 2, 3}, secs[0].Rows())
	assert.Equal(t, 6, secs[1].DataStart)
	assert.Equal(t, []int{4, 5, 6}, secs[1].Rows())
}

func TestDetectAllowListIsExact(t *testing.T) {
	v := DefaultVocabulary()
	v.SectionKeywords = nil
	v.SectionTitles = []string{"quadro especial"}
	d := NewSectionDetector(v, NewFilter(v), zerolog.Nop())

	assert.True(t, d.IsDataTitle("quadro especial"))
	assert.False(t, d.IsDataTitle("quadro especial extra"))
}

func TestColumnMapping(t *testing.T) {
	m := NewColumnMapper(DefaultVocabulary())
	g := grid.FromValues([][]any{{
		"Métrica", "Jan", "FEV.", "Mar ", "2024", "Total Anual", nil, "Janeiro",
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}})

	h, ok := m.Find(g, []int{0})
	require.True(t, ok)
	assert.Equal(t,
		[]string{"métrica", "jan", "fev", "mar", "2024", "total_anual", Unnamed, "janeiro", "abr"},
		h.Keys())

	assert.Equal(t, ColumnOther, h.Columns[0].Kind)
	assert.Equal(t, ColumnMonth, h.Columns[2].Kind)
	assert.Equal(t, 1, h.Columns[2].Month)
	assert.Equal(t, ColumnYear, h.Columns[4].Kind)
	assert.Equal(t, 2024, h.Columns[4].Year)
	assert.Equal(t, ColumnTotal, h.Columns[5].Kind)
	assert.Equal(t, 0, h.Columns[7].Month)
	assert.Equal(t, 3, h.Columns[8].Month)
}

func TestColumnMappingNoHeader(t *testing.T) {
	m := NewColumnMapper(DefaultVocabulary())
	g := grid.FromValues([][]any{{"Perfil por sexo"}, {"Feminino", 1, 2}})
	_, ok := m.Find(g, []int{0, 1})
	assert.False(t, ok)
}

func TestHeaderPath(t *testing.T) {
	g := grid.FromValues([][]any{
		{"Perfil por sexo"},
		monthHeader(),
		dataRow("Feminino", nil, 3, 2),
		dataRow("Masculino", 40, 1, 1),
		dataRow("Não informado", 0),
		dataRow("Texto no mês", nil, "3", 4),
		dataRow("Total", 100, 100),
		{nil, 5, 5},
		{7, 1, 1},
	})
	e := newExtractor()
	secs := e.detector.Detect(g)
	require.Len(t, secs, 1)
	h, ok := e.mapper.Find(g, secs[0].Rows())
	require.True(t, ok)
	assert.Equal(t, 1, h.Row)

	recs := e.parser.WithHeader(g, secs[0], h)
	require.Len(t, recs, 4)

	assert.Equal(t, "Feminino", recs[0].Metric)
	assert.Equal(t, 3.0, recs[0].Months[0])
	assert.Equal(t, 2.0, recs[0].Months[1])
	assert.Equal(t, 5.0, recs[0].Total, "missing total is the month sum")
	assert.Nil(t, recs[0].Year)

	assert.Equal(t, 40.0, recs[1].Total, "explicit non-zero total is kept")

	assert.Equal(t, "Não informado", recs[2].Metric, "zero-valued rows are kept")
	assert.Zero(t, recs[2].Total)

	assert.Equal(t, 0.0, recs[3].Months[0], "text in a month cell counts as 0")
	assert.Equal(t, 4.0, recs[3].Total)
}

func TestHeaderPathYearColumn(t *testing.T) {
	g := grid.FromValues([][]any{
		{"Motivo do desligamento"},
		{"", "2024", "jan", "fev"},
		{"Fim do prazo", 9, 1, 2},
	})
	res := newExtractor().Extract(g)
	require.Len(t, res.Records, 1)
	require.NotNil(t, res.Records[0].Year)
	assert.Equal(t, 2024, *res.Records[0].Year)
	assert.Equal(t, 3.0, res.Records[0].Total)
}

func TestPositionalFallback(t *testing.T) {
	wide := make([]any, 15)
	wide[0], wide[1], wide[2], wide[14] = "Com anual", 0, 5, 50

	g := grid.FromValues([][]any{
		{"Perfil por raça"},
		wide,
		{"Só zeros", 0, 0},
		{"Com texto", "texto", 4},
		{"Negativo", -3, 2},
		{"Subtotal", 9, 9},
	})
	res := newExtractor().Extract(g)
	require.Len(t, res.Sections, 1)
	assert.Nil(t, res.Sections[0].Header)
	require.Len(t, res.Records, 3)

	assert.Equal(t, "Com anual", res.Records[0].Metric)
	assert.Equal(t, 5.0, res.Records[0].Months[1])
	assert.Equal(t, 50.0, res.Records[0].Total, "offset beyond 12 is the total")

	assert.Equal(t, "Com texto", res.Records[1].Metric)
	assert.Equal(t, 4.0, res.Records[1].Months[1])
	assert.Equal(t, 4.0, res.Records[1].Total)

	assert.Equal(t, "Negativo", res.Records[2].Metric)
	assert.Equal(t, 0.0, res.Records[2].Months[0])
	assert.Equal(t, 2.0, res.Records[2].Total)
}

func TestIdentification(t *testing.T) {
	rows := [][]any{
		{"Ano de Referência", nil, 2025},
		{"Unidade do PPCAAM", nil, "Alagoas"},
		{"Responsável pelo preenchimento ", nil, " Maria "},
		{"Unidade de acolhimento", nil, 7},
	}
	id := NewIdentificationExtractor(DefaultVocabulary()).Extract(grid.FromValues(rows))
	require.NotNil(t, id.Year)
	assert.Equal(t, 2025, *id.Year)
	require.NotNil(t, id.Unit)
	assert.Equal(t, "Alagoas", *id.Unit)
	require.NotNil(t, id.Responsible)
	assert.Equal(t, "Maria", *id.Responsible)
}

func TestIdentificationLabelPrecedence(t *testing.T) {
	rows := [][]any{
		{"Unidade de acolhimento", nil, "Casa Lar"},
		{"Unidade do PPCAAM", nil, "Alagoas"},
		{"Unidade", nil, "Outra"},
		{"Responsável", nil, "Ana"},
		{"Responsável", nil, "Bia"},
		{"Responsável", nil, nil},
	}
	id := NewIdentificationExtractor(DefaultVocabulary()).Extract(grid.FromValues(rows))
	require.NotNil(t, id.Unit)
	assert.Equal(t, "Alagoas", *id.Unit, "specific label beats broader ones before and after it")
	require.NotNil(t, id.Responsible)
	assert.Equal(t, "Bia", *id.Responsible, "later row wins among equal labels, blanks never replace")
}

func TestIdentificationRowLimit(t *testing.T) {
	rows := make([][]any, 40)
	rows[35] = []any{"Ano Referência", nil, 2024}
	id := NewIdentificationExtractor(DefaultVocabulary()).Extract(grid.FromValues(rows))
	assert.True(t, id.Empty())
}

func TestExtractEndToEnd(t *testing.T) {
	g := grid.FromValues([][]any{
		{"Ano Referência", nil, 2025},
		{"Informações sobre Pessoas Protegidas"},
		monthHeader(),
		dataRow("Nº de crianças protegidas", nil, 3, 2),
	})
	res := newExtractor().Extract(g)
	require.False(t, res.NoData())
	require.Len(t, res.Records, 1)

	r := res.Records[0]
	assert.Equal(t, "informacoes_sobre_pessoas_protegidas", r.Section)
	assert.Equal(t, "Nº de crianças protegidas", r.Metric)
	assert.Equal(t, 3.0, r.Months[0])
	assert.Equal(t, 2.0, r.Months[1])
	assert.Equal(t, 5.0, r.Total)
	assert.Nil(t, r.Year)

	require.NotNil(t, res.Identification.Year)
	assert.Equal(t, 2025, *res.Identification.Year)
}

func TestExtractTotalOnlySectionYieldsNothing(t *testing.T) {
	g := grid.FromValues([][]any{
		{"Atendimentos por mês"},
		monthHeader(),
		{"Total", 100},
	})
	res := newExtractor().Extract(g)
	assert.Len(t, res.Sections, 1)
	assert.Empty(t, res.Records)
	assert.True(t, res.NoData())
}

func TestProfile(t *testing.T) {
	g := grid.FromValues([][]any{
		{"Perfil por sexo"},
		{"Feminino", 1, "2"},
		{"Comentários Adicionais"},
	})
	p := newExtractor().Profile(g)
	assert.Equal(t, 5, p.NonEmptyCells)
	assert.Equal(t, 2, p.NumericCells)
	require.Len(t, p.TitleCandidates, 2)
	assert.True(t, p.TitleCandidates[0].Accepted)
	assert.False(t, p.TitleCandidates[1].Accepted)
}

func TestLoadVocabulary(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: test\nignore_metrics: [\"Outros\"]\n"), 0o600))
	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, "test", v.Version)
	assert.Equal(t, []string{"outros"}, v.IgnoreMetrics)
	assert.Len(t, v.Months, 12, "absent lists keep defaults")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("months: [jan, fev]\n"), 0o600))
	_, err = LoadVocabulary(bad)
	assert.Error(t, err)

	v, err = LoadVocabulary("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVocabulary().Version, v.Version)
}

func TestSectionKey(t *testing.T) {
	assert.Equal(t, "no_ato_do_desligamento_a_pessoa_protegida_retornou_ao_local_de_risco",
		SectionKey("No ato do desligamento, a pessoa protegida retornou ao local de risco?"))
	assert.Equal(t, "vitima_de_violencia_sexual", SectionKey("  Vítima de   Violência Sexual "))
	assert.Equal(t, "", SectionKey("???"))
}

package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vocabulary is the phrase data every extraction step matches against.
// Lists hold lowercase phrases; diacritic and plain spellings are listed
// side by side because matching does no accent folding.
type Vocabulary struct {
	Version string `yaml:"version"`

	// Months are the twelve header codes, January first.
	Months []string `yaml:"months"`
	// MonthNames maps full month spellings to 1-based months for header cells.
	MonthNames map[string]int `yaml:"month_names"`
	TotalKeys  []string       `yaml:"total_keys"`

	SectionKeywords []string `yaml:"section_keywords"`
	SectionTitles   []string `yaml:"section_titles"`
	IgnoreSections  []string `yaml:"ignore_sections"`
	IgnoreMetrics   []string `yaml:"ignore_metrics"`

	YearLabels         []string `yaml:"year_labels"`
	UnitLabels         []string `yaml:"unit_labels"`
	ResponsibleLabels  []string `yaml:"responsible_labels"`
	IdentificationRows int      `yaml:"identification_rows"`
	IdentificationCol  int      `yaml:"identification_value_col"`
}

// DefaultVocabulary returns a fresh copy of the built-in pt-BR phrase sets.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Version: "pt-BR/2025.1",
		Months:  []string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
		MonthNames: map[string]int{
			"janeiro": 1, "fevereiro": 2, "março": 3, "marco": 3, "abril": 4, "maio": 5, "junho": 6,
			"julho": 7, "agosto": 8, "setembro": 9, "outubro": 10, "novembro": 11, "dezembro": 12,
		},
		TotalKeys: []string{"total", "total_anual"},
		SectionKeywords: []string{
			"informações", "desligamentos", "solicitações", "perfil", "por ", "motivo", "tempo",
			"crianças", "adolescentes", "pessoas", "protegidas", "atendimentos", "casos",
			"medidas", "proteção", "acolhimento", "família", "comunidade", "deficiência", "deficiencia",
			"violência", "violencia", "sexual", "desligamento", "retornou", "local", "risco",
			"vítima", "vitima", "pessoa com deficiência", "pessoa com deficiencia",
			"no ato do desligamento", "ato do desligamento",
		},
		SectionTitles: []string{
			"pessoa com deficiência", "pessoa com deficiencia",
			"vítima de violência sexual", "vitima de violencia sexual",
			"no ato do desligamento, a pessoa protegida retornou ao local de risco?",
			"no ato do desligamento, a pessoa protegida retornou ao local de risco",
		},
		IgnoreSections: []string{
			"comentários adicionais", "comentarios adicionais", "observações", "observacoes",
			"notas", "informações gerais", "informacoes gerais", "cabeçalho", "cabecalho",
		},
		IgnoreMetrics: []string{
			"múltiplas ameaças relacionadas à abrangência do tráfico",
			"multiplas ameacas relacionadas a abrangencia do trafico",
			"múltiplas ameaças", "multiplas ameacas",
			"total", "subtotal", "soma", "soma total",
		},
		YearLabels:         []string{"ano referência", "ano de referência", "ano referencia", "ano de referencia"},
		UnitLabels:         []string{"unidade do ppcaam", "unidade"},
		ResponsibleLabels:  []string{"responsável pelo preenchimento", "responsável", "responsavel"},
		IdentificationRows: 31,
		IdentificationCol:  2,
	}
}

// LoadVocabulary reads a YAML file over the defaults: every list present in
// the file replaces the built-in one, absent lists keep their default.
func LoadVocabulary(path string) (Vocabulary, error) {
	v := DefaultVocabulary()
	if path == "" {
		return v, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided path
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	var file Vocabulary
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	v.overlay(file)
	if err := v.Validate(); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}

func (v *Vocabulary) overlay(o Vocabulary) {
	if o.Version != "" {
		v.Version = o.Version
	}
	pick := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = lowerAll(src)
		}
	}
	pick(&v.Months, o.Months)
	pick(&v.TotalKeys, o.TotalKeys)
	pick(&v.SectionKeywords, o.SectionKeywords)
	pick(&v.SectionTitles, o.SectionTitles)
	pick(&v.IgnoreSections, o.IgnoreSections)
	pick(&v.IgnoreMetrics, o.IgnoreMetrics)
	pick(&v.YearLabels, o.YearLabels)
	pick(&v.UnitLabels, o.UnitLabels)
	pick(&v.ResponsibleLabels, o.ResponsibleLabels)
	if len(o.MonthNames) > 0 {
		v.MonthNames = make(map[string]int, len(o.MonthNames))
		for k, m := range o.MonthNames {
			v.MonthNames[strings.ToLower(k)] = m
		}
	}
	if o.IdentificationRows > 0 {
		v.IdentificationRows = o.IdentificationRows
	}
	if o.IdentificationCol > 0 {
		v.IdentificationCol = o.IdentificationCol
	}
}

func (v Vocabulary) Validate() error {
	if len(v.Months) != 12 {
		return fmt.Errorf("vocabulary %q: need 12 month codes, got %d", v.Version, len(v.Months))
	}
	for name, m := range v.MonthNames {
		if m < 1 || m > 12 {
			return fmt.Errorf("vocabulary %q: month name %q maps to %d", v.Version, name, m)
		}
	}
	if len(v.TotalKeys) == 0 {
		return errors.New("vocabulary: total_keys is empty")
	}
	return nil
}

// monthIndex resolves a normalized header key to a 0-based month.
func (v Vocabulary) monthIndex(key string) (int, bool) {
	for i, m := range v.Months {
		if key == m {
			return i, true
		}
	}
	if m, ok := v.MonthNames[key]; ok {
		return m - 1, true
	}
	return 0, false
}

func (v Vocabulary) isTotal(key string) bool {
	return containsExact(v.TotalKeys, key)
}

// mentionsMonth: substring match of any month code in already-lowercased text.
func (v Vocabulary) mentionsMonth(lower string) bool {
	return containsAny(lower, v.Months)
}

// lowerAll keeps surrounding spaces: "por " must not match "portador".
func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func containsExact(list []string, s string) bool {
	for _, p := range list {
		if p == s {
			return true
		}
	}
	return false
}

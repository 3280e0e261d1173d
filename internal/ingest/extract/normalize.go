package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"ingest-service/internal/grid"
)

// Unnamed stands in for blank or symbol-only header cells.
const Unnamed = "unnamed"

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// ColumnKey turns a header cell into a positional column key:
// drop punctuation, whitespace runs -> "_", lowercase.
func ColumnKey(c grid.Cell) string {
	if c.IsEmpty() {
		return Unnamed
	}
	return keyOf(c.String())
}

func keyOf(s string) string {
	s = reNonWord.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = reSpaces.ReplaceAllString(s, "_")
	if s == "" {
		return Unnamed
	}
	return strings.ToLower(s)
}

// SectionKey is the storage form of a section title:
// accents folded, then the same cleanup as column keys.
// "Informações sobre Pessoas Protegidas" -> "informacoes_sobre_pessoas_protegidas".
func SectionKey(title string) string {
	folded := foldAccents(strings.TrimSpace(title))
	k := keyOf(folded)
	if k == Unnamed {
		return ""
	}
	return k
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

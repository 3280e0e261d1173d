package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromValuesTypes(t *testing.T) {
	when := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	g := FromValues([][]any{
		{"Ano Referência", nil, 2025},
		{"x", 1.5, when, true, "   "},
	})

	require.Equal(t, 2, g.NumRows())
	assert.Equal(t, 5, g.NumCols())
	assert.Equal(t, Text, g.At(0, 0).Kind)
	assert.Equal(t, Empty, g.At(0, 1).Kind)

	v, ok := g.At(0, 2).Number()
	require.True(t, ok)
	assert.Equal(t, 2025.0, v)

	assert.Equal(t, Date, g.At(1, 2).Kind)
	assert.Equal(t, "2025-03-01", g.At(1, 2).String())
	assert.Equal(t, Bool, g.At(1, 3).Kind)
	assert.True(t, g.At(1, 4).IsEmpty(), "blank text is empty")
	assert.True(t, g.At(7, 7).IsEmpty(), "out of range reads as empty")
}

func TestRowHelpers(t *testing.T) {
	g := FromValues([][]any{
		{"Perfil por sexo"},
		{"", "jan", "fev", nil, "total"},
		{"Feminino", 3, 0, nil, 3},
		{nil, "só uma"},
	})

	assert.True(t, g.IsTitleCandidate(0))
	assert.False(t, g.IsTitleCandidate(1))
	assert.False(t, g.IsTitleCandidate(3), "single cell outside column 0")

	assert.Equal(t, 4, g.NonEmpty(1))
	assert.Equal(t, "jan fev total", g.RowString(1))
	assert.Equal(t, "Feminino 3 0 3", g.RowString(2))
	assert.Len(t, g.Row(0), g.NumCols())
}

func TestNumberOnlyForNativeNumbers(t *testing.T) {
	_, ok := TextCell("12").Number()
	assert.False(t, ok)
	assert.True(t, TextCell("12").LooksNumeric())
	assert.False(t, TextCell("12a").LooksNumeric())
	assert.True(t, NumberCell(0).LooksNumeric())
}

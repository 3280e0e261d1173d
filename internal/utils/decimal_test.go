package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3", 3, true},
		{" 197,00 ", 197, true},
		{"1.234,50", 1234.5, true},
		{"1 234,50", 1234.5, true},
		{"2 345,6", 2345.6, true},
		{"1,234.50", 1234.5, true},
		{"12.5", 12.5, true},
		{"1.234", 1234, true},
		{"12.345.678", 12345678, true},
		{"-3", -3, true},
		{"", 0, false},
		{"-", 0, false},
		{"Nº 3", 0, false},
		{"1,2,3", 0, false},
		{"1.2.3", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseDecimal(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, tc.in)
		}
	}
}

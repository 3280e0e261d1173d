package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rxDecimalChars = regexp.MustCompile(`^[+-]?[\d.,]+$`)
	// 1.234 / 12.345.678: dot used only as a thousands separator
	rxDotThousands = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+$`)
)

// ParseDecimal parses numbers as they appear in pt-BR sheets and exports:
// "1.234,50", "1 234,50", "197,00", "12.5", "-3". Spaces, NBSP and NNBSP
// are dropped. When both separators appear the rightmost one is decimal;
// a lone dot followed by groups of exactly three digits is a thousands
// separator. Anything with letters or other symbols is rejected.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer(" ", "", "\u00A0", "", "\u202F", "", "\t", "").Replace(s)
	if !rxDecimalChars.MatchString(s) {
		return 0, false
	}

	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			return 0, false
		}
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && rxDotThousands.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	if strings.Count(s, ".") > 1 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

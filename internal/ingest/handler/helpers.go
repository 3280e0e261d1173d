package handler

import (
	"strconv"
	"strings"
)

func atoi(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// optYear parses an optional year parameter. ok is false when s is present
// but not a plausible year.
func optYear(s string) (year *int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1900 || y > 2999 {
		return nil, false
	}
	return &y, true
}

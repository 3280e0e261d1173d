package extract

import "strings"

// Filter decides which section titles and metric names carry no tabular data.
// Matching is case-insensitive substring containment, nothing more.
type Filter struct {
	sections []string
	metrics  []string
}

func NewFilter(v Vocabulary) Filter {
	return Filter{sections: lowerAll(v.IgnoreSections), metrics: lowerAll(v.IgnoreMetrics)}
}

// IgnoreSection never matches an empty name; callers skip those on their own.
func (f Filter) IgnoreSection(name string) bool {
	return matchPhrase(name, f.sections)
}

func (f Filter) IgnoreMetric(name string) bool {
	return matchPhrase(name, f.metrics)
}

func matchPhrase(name string, phrases []string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	return containsAny(name, phrases)
}

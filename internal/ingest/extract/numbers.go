package extract

import "ingest-service/internal/grid"

// ParseNumberOrZero is the single numeric coercion rule of the extractor.
// A natively numeric cell yields its value; every other cell, text that
// looks like a number included, yields 0. It never fails: a bad cell
// contributes 0 and the row is kept.
func ParseNumberOrZero(c grid.Cell) float64 {
	if v, ok := c.Number(); ok {
		return v
	}
	return 0
}

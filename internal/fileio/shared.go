// Package fileio loads the first sheet of a workbook or CSV export into a grid.
package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"ingest-service/internal/grid"
	"ingest-service/internal/ingest/model"
	"ingest-service/internal/utils"
)

var ErrUnsupported = errors.New("unsupported file type")

// Extensions lists what Load accepts, lowercase with the dot.
var Extensions = []string{".xlsx", ".xlsm", ".xls", ".csv"}

// Supported reports whether filename has an extension Load can read.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load picks a reader by extension and returns the first sheet as a grid.
// A workbook without sheets yields an empty grid. Failures come back as
// *model.GridLoadError.
func Load(r io.Reader, filename string) (*grid.Grid, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	var (
		rows [][]grid.Cell
		err  error
	)
	switch ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, &model.GridLoadError{Source: filename, Err: err}
	}
	return grid.New(rows), nil
}

// textToCell types a cell that only exists as text (CSV, legacy xls):
// anything ParseDecimal accepts becomes a number.
func textToCell(s string) grid.Cell {
	s = normalizeCell(s)
	if s == "" {
		return grid.Cell{}
	}
	if f, ok := utils.ParseDecimal(s); ok {
		return grid.NumberCell(f)
	}
	return grid.TextCell(s)
}

// normalizeCell trims whitespace, including NBSP, and drops stray CRs.
func normalizeCell(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	return strings.Trim(s, " \t\n\u00a0\u202f")
}

func textRows(rows [][]string) [][]grid.Cell {
	out := make([][]grid.Cell, len(rows))
	for i, r := range rows {
		cells := make([]grid.Cell, len(r))
		for j, v := range r {
			cells[j] = textToCell(v)
		}
		out[i] = cells
	}
	return out
}

package fileio

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	excelize "github.com/xuri/excelize/v2"

	"ingest-service/internal/grid"
)

// 01/02/2025, 2025-01-02, 13:45, jan-25
var rxDateShown = regexp.MustCompile(`\d[/-]\d|\d:\d|[A-Za-z]{3}-\d`)

func readXLSX(r io.Reader) ([][]grid.Cell, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil
	}
	shown, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	out := make([][]grid.Cell, len(raw))
	for i, rr := range raw {
		cells := make([]grid.Cell, len(rr))
		for j, v := range rr {
			var disp string
			if i < len(shown) && j < len(shown[i]) {
				disp = shown[i][j]
			}
			cells[j] = xlsxCell(f, sheet, i, j, v, disp)
		}
		out[i] = cells
	}
	return out, nil
}

// xlsxCell types one cell from its stored value, falling back to the
// displayed text. Number cells whose display is not itself a number are
// treated as dates when the serial converts.
func xlsxCell(f *excelize.File, sheet string, row, col int, raw, disp string) grid.Cell {
	raw = normalizeCell(raw)
	if raw == "" {
		return grid.Cell{}
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return grid.TextCell(raw)
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return textToCell(raw)
	}

	switch typ {
	case excelize.CellTypeBool:
		return grid.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return grid.TextCell(normalizeCell(disp))
	case excelize.CellTypeError:
		return grid.TextCell(raw)
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// formula strings and anything else stored as text
		return textToCell(raw)
	}
	if looksLikeDate(disp) {
		if t, err := excelize.ExcelDateToTime(n, false); err == nil {
			return grid.DateCell(t)
		}
	}
	return grid.NumberCell(n)
}

func looksLikeDate(disp string) bool {
	return rxDateShown.MatchString(normalizeCell(disp))
}

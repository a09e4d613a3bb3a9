package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

func readWorkbook(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close() //nolint:errcheck

	names := f.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		records := make([]Record, len(rows))
		for i, row := range rows {
			cells := make([]string, len(row))
			for j, cell := range row {
				cells[j] = plainNumber(strings.TrimSpace(cell))
			}
			records[i] = Record{Line: i + 1, Cells: cells}
		}
		sheets = append(sheets, buildSheet(name, records))
	}
	return sheets, nil
}

// plainNumber rewrites integral values stored in exponent notation
// ("1.3812345678E+10") as plain digits so phone cells survive.
func plainNumber(cell string) string {
	if !strings.ContainsAny(cell, "eE") {
		return cell
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) >= 1e15 {
		return cell
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

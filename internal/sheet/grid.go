// Package sheet reads spreadsheet exports into raw grids and locates the
// real header row inside them.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Grid is the raw cell content of one worksheet, row-major, with no header
// assumption. Rows may have different lengths.
type Grid [][]string

// Cell returns the trimmed value at (row, col), or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return strings.TrimSpace(g[row][col])
}

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Read dispatches on the file extension and returns the first worksheet.
func Read(filename string, data []byte) (Grid, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(bytes.NewReader(data))
	case ".csv":
		return ReadCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("sheet.Read: %s: %w", filename, ErrUnsupportedFormat)
	}
}

// ReadXLSX returns the raw values of the first worksheet. Numbers and dates
// come back unformatted (dates as Excel serials).
func ReadXLSX(r io.Reader) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("sheet.ReadXLSX: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("sheet.ReadXLSX: workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet.ReadXLSX: reading %q: %w", sheets[0], err)
	}
	return Grid(rows), nil
}

// ReadCSV reads a comma-separated export. Ragged rows are allowed.
func ReadCSV(r io.Reader) (Grid, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheet.ReadCSV: %w", err)
	}
	return Grid(rows), nil
}

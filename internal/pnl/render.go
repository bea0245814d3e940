package pnl

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet the statement is written to.
const SheetName = "P&L Statement"

func (e Entry) displayLabel() string {
	return strings.Repeat("    ", e.Indent) + e.Label
}

// Text renders the statement as an aligned plain-text table.
func Text(stmt *Statement) string {
	var b strings.Builder
	if stmt.Title != "" {
		b.WriteString(stmt.Title + "\n")
	}
	if stmt.Period != "" {
		b.WriteString(stmt.Period + "\n")
	}

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, e := range stmt.Entries {
		amount := ""
		if e.Kind != Header {
			amount = e.Amount.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t\n", e.displayLabel(), amount)
	}
	w.Flush()

	if len(stmt.Unmapped) > 0 {
		b.WriteString("\nNot in statement:\n")
		for _, c := range stmt.UnmappedCategories() {
			fmt.Fprintf(&b, "  %s: %s\n", c, stmt.Unmapped[c].StringFixed(2))
		}
	}
	return b.String()
}

// WriteWorkbook renders the statement as xlsx. Rows above the first line
// hold the title block and the column header; Formula lines are written as
// live formulas.
func WriteWorkbook(stmt *Statement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("WriteWorkbook: naming sheet: %w", err)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	boldStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Family: "Arial", Size: 10, Bold: true},
		Border: border,
		NumFmt: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("WriteWorkbook: bold style: %w", err)
	}
	valueStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Family: "Arial", Size: 10},
		Border: border,
		NumFmt: 4,
	})
	if err != nil {
		return nil, fmt.Errorf("WriteWorkbook: value style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Family: "Arial", Size: 12, Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("WriteWorkbook: title style: %w", err)
	}

	title := stmt.Title
	if title == "" {
		title = "Profit and Loss Statement"
	}
	set := func(cell string, v interface{}) error {
		return f.SetCellValue(SheetName, cell, v)
	}
	if err := set("A1", title); err != nil {
		return nil, fmt.Errorf("WriteWorkbook: title: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "A1", titleStyle); err != nil {
		return nil, fmt.Errorf("WriteWorkbook: title style: %w", err)
	}
	if stmt.Period != "" {
		if err := set("A2", stmt.Period); err != nil {
			return nil, fmt.Errorf("WriteWorkbook: period: %w", err)
		}
	}

	headerRow := stmt.RowOffset - 1
	if headerRow < 3 {
		return nil, fmt.Errorf("WriteWorkbook: row offset %d leaves no room for the title block", stmt.RowOffset)
	}
	if err := set(fmt.Sprintf("A%d", headerRow), "Category"); err != nil {
		return nil, fmt.Errorf("WriteWorkbook: header: %w", err)
	}
	if err := set(fmt.Sprintf("B%d", headerRow), "Amount"); err != nil {
		return nil, fmt.Errorf("WriteWorkbook: header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("B%d", headerRow), boldStyle); err != nil {
		return nil, fmt.Errorf("WriteWorkbook: header style: %w", err)
	}

	labelWidth := 25
	for _, e := range stmt.Entries {
		label := e.displayLabel()
		if n := utf8.RuneCountInString(label) + 2; n > labelWidth {
			labelWidth = n
		}
		a, b := fmt.Sprintf("A%d", e.Row), fmt.Sprintf("B%d", e.Row)
		if err := set(a, label); err != nil {
			return nil, fmt.Errorf("WriteWorkbook: row %d: %w", e.Row, err)
		}
		var cellErr error
		switch e.Kind {
		case Value:
			cellErr = set(b, e.Amount.InexactFloat64())
		case Formula:
			cellErr = f.SetCellFormula(SheetName, b, e.Cell)
		}
		if cellErr != nil {
			return nil, fmt.Errorf("WriteWorkbook: row %d: %w", e.Row, cellErr)
		}

		style := valueStyle
		if e.Bold || e.Kind == Header {
			style = boldStyle
		}
		if err := f.SetCellStyle(SheetName, a, b, style); err != nil {
			return nil, fmt.Errorf("WriteWorkbook: styling row %d: %w", e.Row, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", float64(labelWidth)); err != nil {
		return nil, fmt.Errorf("WriteWorkbook: column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "B", 15); err != nil {
		return nil, fmt.Errorf("WriteWorkbook: column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("WriteWorkbook: writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

package payroll

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ReportSheet is the worksheet name of the payroll report.
const ReportSheet = "Payroll Report"

// ReportColumns is the output column order.
var ReportColumns = []string{
	ColID, ColName, ColJobDescription, ColRate, ColHours, ColBasePay,
	ColDriverReimbursement, ColCCTips, ColCashTips, ColOtherTips, ColTotalPay,
}

// borders returns thin borders with the top or bottom edge optionally
// medium.
func borders(top, bottom int) []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: top},
		{Type: "bottom", Color: "000000", Style: bottom},
	}
}

// WriteReport renders records as a styled xlsx workbook. Total Pay is a
// formula over Base Pay and Other Tips; the last row holds SUM totals.
func WriteReport(records []domain.PayRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return nil, fmt.Errorf("WriteReport: naming sheet: %w", err)
	}

	left := &excelize.Alignment{Horizontal: "left"}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 11, Bold: true},
		Border:    borders(1, 2),
		Alignment: left,
	})
	if err != nil {
		return nil, fmt.Errorf("WriteReport: header style: %w", err)
	}
	textStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 11},
		Border:    borders(1, 1),
		Alignment: left,
	})
	if err != nil {
		return nil, fmt.Errorf("WriteReport: text style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 11},
		Border:    borders(1, 1),
		Alignment: left,
		NumFmt:    2,
	})
	if err != nil {
		return nil, fmt.Errorf("WriteReport: number style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "Arial", Size: 11, Bold: true},
		Border:    borders(2, 1),
		Alignment: left,
		NumFmt:    2,
	})
	if err != nil {
		return nil, fmt.Errorf("WriteReport: totals style: %w", err)
	}

	widths := make([]int, len(ReportColumns))
	track := func(col int, s string) {
		if n := utf8.RuneCountInString(s); n > widths[col] {
			widths[col] = n
		}
	}

	for i, h := range ReportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ReportSheet, cell, h); err != nil {
			return nil, fmt.Errorf("WriteReport: header %s: %w", h, err)
		}
		track(i, h)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(ReportColumns))
	if err := f.SetCellStyle(ReportSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("WriteReport: styling header: %w", err)
	}

	for i, r := range records {
		row := i + 2
		values := []interface{}{
			r.EmployeeID,
			r.Name,
			r.JobDescription,
			r.Rate.InexactFloat64(),
			r.Hours.InexactFloat64(),
			r.BasePay.InexactFloat64(),
			r.DriverReimbursement.InexactFloat64(),
			r.CCTips.InexactFloat64(),
			r.CashTips.InexactFloat64(),
			r.OtherTips.InexactFloat64(),
		}
		display := []string{
			strconv.Itoa(r.EmployeeID), r.Name, r.JobDescription,
			r.Rate.StringFixed(2), r.Hours.StringFixed(2), r.BasePay.StringFixed(2),
			r.DriverReimbursement.StringFixed(2), r.CCTips.StringFixed(2), r.CashTips.StringFixed(2),
			r.OtherTips.StringFixed(2), r.TotalPay.StringFixed(2),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			if err := f.SetCellValue(ReportSheet, cell, v); err != nil {
				return nil, fmt.Errorf("WriteReport: row %d: %w", row, err)
			}
		}
		for c, s := range display {
			track(c, s)
		}
		total := fmt.Sprintf("K%d", row)
		if err := f.SetCellFormula(ReportSheet, total, fmt.Sprintf("=F%d+J%d", row, row)); err != nil {
			return nil, fmt.Errorf("WriteReport: total pay formula row %d: %w", row, err)
		}
		if err := f.SetCellStyle(ReportSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), textStyle); err != nil {
			return nil, fmt.Errorf("WriteReport: styling row %d: %w", row, err)
		}
		if err := f.SetCellStyle(ReportSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("%s%d", lastCol, row), numberStyle); err != nil {
			return nil, fmt.Errorf("WriteReport: styling row %d: %w", row, err)
		}
	}

	totalRow := len(records) + 2
	if err := f.SetCellValue(ReportSheet, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
		return nil, fmt.Errorf("WriteReport: totals label: %w", err)
	}
	if len(records) > 0 {
		// Hours and every money column except Rate.
		for c := 5; c <= len(ReportColumns); c++ {
			name, _ := excelize.ColumnNumberToName(c)
			formula := fmt.Sprintf("=SUM(%s2:%s%d)", name, name, totalRow-1)
			if err := f.SetCellFormula(ReportSheet, fmt.Sprintf("%s%d", name, totalRow), formula); err != nil {
				return nil, fmt.Errorf("WriteReport: totals formula %s: %w", name, err)
			}
		}
	}
	if err := f.SetCellStyle(ReportSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), totalStyle); err != nil {
		return nil, fmt.Errorf("WriteReport: styling totals: %w", err)
	}

	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(ReportSheet, name, name, float64(w+2)); err != nil {
			return nil, fmt.Errorf("WriteReport: column width %s: %w", name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("WriteReport: writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

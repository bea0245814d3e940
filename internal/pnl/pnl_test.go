package pnl

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func tx(desc, amount, category string) domain.Transaction {
	return domain.Transaction{
		Date:        day,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
	}
}

func mustValue(t *testing.T, stmt *Statement, key string) decimal.Decimal {
	t.Helper()
	v, ok := stmt.Value(key)
	if !ok {
		t.Fatalf("Value(%q) not found", key)
	}
	return v
}

func TestAggregate_ComposesThroughFormulas(t *testing.T) {
	txs := []domain.Transaction{
		tx("DEPOSIT", "100", "Revenue - General - In-Store"),
		tx("GRUBHUB", "40", "Revenue - Delivery - Grubhub"),
	}

	stmt, err := Aggregate(txs, DefaultTemplate(), Options{RowOffset: 6})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	want := decimal.NewFromInt(140)
	for _, key := range []string{"total_revenue", "gross_profit", "operating_profit", "net_income_before_tax", "net_income_after_tax"} {
		if got := mustValue(t, stmt, key); !got.Equal(want) {
			t.Errorf("Value(%q) = %s, want %s", key, got, want)
		}
	}
}

func TestAggregate_ExpensesAndDedupe(t *testing.T) {
	txs := []domain.Transaction{
		tx("DEPOSIT", "1000", "Revenue - General - In-Store"),
		tx("SYSCO", "-300", "Cost of Goods Sold - Food Vendor - Sysco"),
		tx("SYSCO", "-300", "Cost of Goods Sold - Food Vendor - Sysco"), // duplicate export line
		tx("ADP", "-200", "Payroll - ADP - Salaried"),
		tx("EBF", "-50", "Banking - Loan Payment - EBF"),
		tx("IL DEPT", "-10", "Tax - State Withholding Payment"),
	}

	stmt, err := Aggregate(txs, DefaultTemplate(), Options{})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if stmt.Duplicates != 1 || stmt.Transactions != 5 {
		t.Errorf("Duplicates, Transactions = %d, %d, want 1, 5", stmt.Duplicates, stmt.Transactions)
	}

	tests := []struct {
		key  string
		want int64
	}{
		{"cogs", 300},
		{"gross_profit", 700},
		{"total_opex", 200},
		{"operating_profit", 500},
		{"net_income_before_tax", 450},
		{"net_income_after_tax", 440},
	}
	for _, tt := range tests {
		if got := mustValue(t, stmt, tt.key); !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("Value(%q) = %s, want %d", tt.key, got, tt.want)
		}
	}
}

func TestAggregate_RowsAndCells(t *testing.T) {
	stmt, err := Aggregate(nil, DefaultTemplate(), Options{})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if stmt.Entries[0].Row != 6 {
		t.Errorf("first row = %d, want 6", stmt.Entries[0].Row)
	}
	total := stmt.Entries[3]
	if total.Key != "total_revenue" || total.Cell != "=SUM(B7:B8)" {
		t.Errorf("total revenue = %q %q, want total_revenue =SUM(B7:B8)", total.Key, total.Cell)
	}
}

func TestAggregate_Unmapped(t *testing.T) {
	txs := []domain.Transaction{
		tx("DEPOSIT", "100", "Revenue - General - In-Store"),
		tx("MYSTERY", "25", "Revenue - Miscellaneous"),
		tx("ODD", "-5", ""),
	}
	stmt, err := Aggregate(txs, DefaultTemplate(), Options{})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got := mustValue(t, stmt, "total_revenue"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total_revenue = %s, want 100", got)
	}
	if got := stmt.Unmapped["Revenue - Miscellaneous"]; !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Unmapped[Revenue - Miscellaneous] = %s, want 25", got)
	}
	if _, ok := stmt.Unmapped[UncategorizedKey]; !ok {
		t.Errorf("Unmapped missing %q", UncategorizedKey)
	}
}

func TestAggregate_TemplateErrors(t *testing.T) {
	tests := []struct {
		name string
		tmpl Template
	}{
		{"unknown key", Template{formula("x", "X", "B{nope}", false)}},
		{"duplicate key", Template{income("a", "A"), income("a", "A again")}},
		{"forward reference", Template{formula("x", "X", "B{y}", false), income("y", "Y")}},
		{"bad expression", Template{income("a", "A"), formula("x", "X", "B{a}*2", false)}},
	}
	for _, tt := range tests {
		if _, err := Aggregate(nil, tt.tmpl, Options{}); err == nil {
			t.Errorf("%s: Aggregate() error = nil, want error", tt.name)
		}
	}
}

func TestEvaluate(t *testing.T) {
	values := map[int]decimal.Decimal{
		6: decimal.NewFromInt(10),
		7: decimal.NewFromInt(20),
		8: decimal.NewFromInt(5),
	}
	tests := []struct {
		expr string
		want int64
	}{
		{"B6", 10},
		{"SUM(B6:B8)", 35},
		{"SUM(B6:B7)-B8", 25},
		{"B6+B7-B8", 25},
		{"B8-B6", -5},
	}
	for _, tt := range tests {
		got, err := evaluate(tt.expr, values)
		if err != nil {
			t.Errorf("evaluate(%q) error = %v", tt.expr, err)
			continue
		}
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("evaluate(%q) = %s, want %d", tt.expr, got, tt.want)
		}
	}

	for _, bad := range []string{"", "B6-", "B9", "C6"} {
		if _, err := evaluate(bad, values); err == nil {
			t.Errorf("evaluate(%q) error = nil, want error", bad)
		}
	}
}

func TestWriteWorkbook(t *testing.T) {
	stmt, err := Aggregate([]domain.Transaction{tx("DEPOSIT", "100", "Revenue - General - In-Store")}, DefaultTemplate(), Options{Title: "Rosati's P&L", Period: "March 2024"})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	data, err := WriteWorkbook(stmt)
	if err != nil {
		t.Fatalf("WriteWorkbook() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"A1": "Rosati's P&L",
		"A2": "March 2024",
		"A5": "Category",
		"B5": "Amount",
		"A6": "Revenues",
		"A7": "    Cash sales",
	}
	for cell, want := range checks {
		if got, _ := f.GetCellValue(SheetName, cell); got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
	if formula, _ := f.GetCellFormula(SheetName, "B9"); !strings.Contains(formula, "SUM(B7:B8)") {
		t.Errorf("B9 formula = %q, want SUM(B7:B8)", formula)
	}
}

func TestText(t *testing.T) {
	stmt, err := Aggregate([]domain.Transaction{
		tx("DEPOSIT", "100", "Revenue - General - In-Store"),
		tx("MYSTERY", "25", "Revenue - Miscellaneous"),
	}, DefaultTemplate(), Options{Title: "P&L"})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	out := Text(stmt)
	for _, want := range []string{"P&L", "Cash sales", "100.00", "Not in statement:", "Revenue - Miscellaneous: 25.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("Text() missing %q", want)
		}
	}
}

package menu

import (
	"testing"
	"time"

	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/shopspring/decimal"
)

func TestDateRangeFromFilename(t *testing.T) {
	start, end, ok := DateRangeFromFilename("Menu_Sales_Analysis_20240301_20240331.xlsx")
	if !ok {
		t.Fatal("DateRangeFromFilename() ok = false, want true")
	}
	if !start.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DateRangeFromFilename() = %v, %v", start, end)
	}
	if _, _, ok := DateRangeFromFilename("menu.xlsx"); ok {
		t.Error("DateRangeFromFilename(menu.xlsx) ok = true, want false")
	}
}

func TestParseGridAndCompute(t *testing.T) {
	grid := sheet.Grid{
		{"Menu Sales Analysis"},
		{"Store 12", "", "March"},
		{"Category", "Item Description", "Qty", "Sales", "% of Sales"},
		{"Pizza", "Large Cheese", "10", "150.00", "50%"},
		{"Pizza", "Small Cheese", "3", "25.00", "8%"},
		{"Sides", "Garlic Bread", "20", "100.00", "33%"},
		{"Sides", "Comped Salad", "0", "0", "0%"},
		{"", "", "", "", ""},
		{"Drinks", "Soda", "5", "25.00", "8%"},
	}

	r, err := ParseGrid(grid)
	if err != nil {
		t.Fatalf("ParseGrid() error = %v", err)
	}
	if len(r.Items) != 4 {
		t.Fatalf("len(Items) = %d, want 4", len(r.Items))
	}
	if want := decimal.RequireFromString("8.33"); !r.Items[1].Price.Equal(want) {
		t.Errorf("Small Cheese price = %s, want %s", r.Items[1].Price, want)
	}

	m := Compute(r.Items)
	if !m.TotalSales.Equal(decimal.NewFromInt(300)) {
		t.Errorf("TotalSales = %s, want 300", m.TotalSales)
	}
	if !m.TotalItems.Equal(decimal.NewFromInt(38)) {
		t.Errorf("TotalItems = %s, want 38", m.TotalItems)
	}
	if m.Top[0].Name != "Large Cheese" {
		t.Errorf("Top[0] = %q, want Large Cheese", m.Top[0].Name)
	}
	if m.Bottom[0].Name != "Soda" {
		t.Errorf("Bottom[0] = %q, want Soda", m.Bottom[0].Name)
	}
	if !m.CategorySales["Pizza"].Equal(decimal.NewFromInt(175)) {
		t.Errorf("CategorySales[Pizza] = %s, want 175", m.CategorySales["Pizza"])
	}
}

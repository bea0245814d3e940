// Package menu parses the "Menu Sales Analysis" export.
package menu

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/shopspring/decimal"
)

// Column names after case folding and synonym mapping.
const (
	ColItemName   = "Item Name"
	ColQuantity   = "Quantity"
	ColTotalSales = "Total Sales"
	ColCategory   = "Category"
)

// Synonyms maps the lowercased export headers onto column names.
var Synonyms = map[string]string{
	"item description": ColItemName,
	"item name":        ColItemName,
	"qty":              ColQuantity,
	"quantity":         ColQuantity,
	"sales":            ColTotalSales,
	"total sales":      ColTotalSales,
	"category":         ColCategory,
}

// RankSize is how many items the top and bottom lists hold.
const RankSize = 5

// Item is one menu line.
type Item struct {
	Name       string
	Category   string
	Quantity   decimal.Decimal
	TotalSales decimal.Decimal
	Price      decimal.Decimal
}

// Report is a parsed menu export.
type Report struct {
	Items []Item
	// Start and End come from the file name and are zero when it has no
	// date range.
	Start, End time.Time
}

var dateRangePattern = regexp.MustCompile(`(\d{8})_(\d{8})`)

// DateRangeFromFilename parses a YYYYMMDD_YYYYMMDD range out of name.
func DateRangeFromFilename(name string) (start, end time.Time, ok bool) {
	m := dateRangePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse("20060102", m[1])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse("20060102", m[2])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// Parse reads a menu export; the date range comes from filename.
func Parse(filename string, data []byte) (*Report, error) {
	grid, err := sheet.Read(filename, data)
	if err != nil {
		return nil, fmt.Errorf("menu.Parse: reading %s: %w", filename, err)
	}
	r, err := ParseGrid(grid)
	if err != nil {
		return nil, err
	}
	r.Start, r.End, _ = DateRangeFromFilename(filename)
	return r, nil
}

// ParseGrid takes the first row with more than three filled cells as the
// header. Items with no name or no quantity sold are dropped.
func ParseGrid(grid sheet.Grid) (*Report, error) {
	headerRow, err := sheet.LocateHeaderFunc(grid, 0, func(cells []string) bool {
		return sheet.NonEmptyCount(cells) > 3
	})
	if err != nil {
		return nil, fmt.Errorf("menu.ParseGrid: %w", err)
	}
	table, err := sheet.NewTable(grid, headerRow, sheet.Options{Synonyms: Synonyms, FoldCase: true})
	if err != nil {
		return nil, fmt.Errorf("menu.ParseGrid: %w", err)
	}
	if err := table.Require(ColItemName, ColQuantity, ColTotalSales); err != nil {
		return nil, fmt.Errorf("menu.ParseGrid: %w", err)
	}

	r := &Report{}
	for _, row := range table.Rows {
		name := row.Get(ColItemName)
		qty := row.DecimalOrZero(ColQuantity)
		if name == "" || !qty.IsPositive() {
			continue
		}
		sales := row.DecimalOrZero(ColTotalSales)
		r.Items = append(r.Items, Item{
			Name:       name,
			Category:   row.Get(ColCategory),
			Quantity:   qty,
			TotalSales: sales,
			Price:      sales.Div(qty).Round(2),
		})
	}
	return r, nil
}

// Metrics summarizes menu sales.
type Metrics struct {
	TotalSales   decimal.Decimal
	TotalItems   decimal.Decimal
	AveragePrice decimal.Decimal
	Top          []Item
	Bottom       []Item
	// CategorySales totals sales per category when the export has one.
	CategorySales map[string]decimal.Decimal
}

// Compute derives totals and the best and worst sellers by sales.
func Compute(items []Item) Metrics {
	m := Metrics{CategorySales: map[string]decimal.Decimal{}}
	for _, it := range items {
		m.TotalSales = m.TotalSales.Add(it.TotalSales)
		m.TotalItems = m.TotalItems.Add(it.Quantity)
		if it.Category != "" {
			m.CategorySales[it.Category] = m.CategorySales[it.Category].Add(it.TotalSales)
		}
	}
	if m.TotalItems.IsPositive() {
		m.AveragePrice = m.TotalSales.Div(m.TotalItems)
	}

	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalSales.GreaterThan(sorted[j].TotalSales)
	})
	n := RankSize
	if n > len(sorted) {
		n = len(sorted)
	}
	m.Top = sorted[:n]
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		m.Bottom = append(m.Bottom, sorted[i])
	}
	return m
}

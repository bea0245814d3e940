// Package sales parses the daily "History Sales Overview" export and
// computes sales and labor metrics.
package sales

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/shopspring/decimal"
)

// Column names after synonym mapping.
const (
	ColDate             = "Date"
	ColTotalSales       = "Total Sales"
	ColDeliveryCharges  = "Delivery Charges"
	ColLaborHours       = "Labor Hours"
	ColLaborCost        = "Labor Cost"
	ColLaborPercent     = "Labor %"
	ColCashAndCarry     = "Cash & Carry"
	ColPickup           = "Pickup"
	ColDelivery         = "Delivery"
	ColTaxableSales     = "Taxable Sales"
	ColNonTaxableSales  = "Non-Taxable Sales"
	ColVoidsAmount      = "Voids Amount"
	ColTransactionCount = "Transaction Count"
)

// HeaderWindow bounds the search for the "Date" header.
const HeaderWindow = 15

// Synonyms maps export headers onto column names. The labor cost and labor
// percentage columns have no header text in the export and are addressed
// by position.
var Synonyms = map[string]string{
	"Del Chg":          ColDeliveryCharges,
	"Labor":            ColLaborHours,
	"Unnamed: 30":      ColLaborCost,
	"Unnamed: 31":      ColLaborPercent,
	"Liable Taxes":     ColTaxableSales,
	"Non Liable Taxes": ColNonTaxableSales,
	"Voids":            ColVoidsAmount,
	"Chk Cnt":          ColTransactionCount,
	"Check Cnt":        ColTransactionCount,
}

var hundred = decimal.NewFromInt(100)

// Day is one daily row.
type Day struct {
	Date             time.Time
	TotalSales       decimal.Decimal
	CashAndCarry     decimal.Decimal
	Pickup           decimal.Decimal
	Delivery         decimal.Decimal
	DeliveryCharges  decimal.Decimal
	TaxableSales     decimal.Decimal
	NonTaxableSales  decimal.Decimal
	VoidsAmount      decimal.Decimal
	TransactionCount decimal.Decimal
	LaborHours       decimal.Decimal
	LaborCost        decimal.Decimal
	// LaborPercent is labor cost over total sales for the day, in percent.
	LaborPercent decimal.Decimal
	// MovingAverage is the mean of total sales over this day and up to six
	// preceding days.
	MovingAverage decimal.Decimal
}

// Report is a parsed sales export.
type Report struct {
	Days []Day
	// SummaryLaborCost and SummaryLaborPercent come from the export's
	// "Total" row; HasSummary is false when it had none.
	SummaryLaborCost    decimal.Decimal
	SummaryLaborPercent decimal.Decimal
	HasSummary          bool
}

// Parse reads a sales export.
func Parse(filename string, data []byte) (*Report, error) {
	grid, err := sheet.Read(filename, data)
	if err != nil {
		return nil, fmt.Errorf("sales.Parse: reading %s: %w", filename, err)
	}
	return ParseGrid(grid)
}

// ParseGrid reads daily rows and the summary row. Rows without a readable
// date are ignored.
func ParseGrid(grid sheet.Grid) (*Report, error) {
	headerRow, err := sheet.LocateHeader(grid, []string{ColDate}, HeaderWindow)
	if err != nil {
		return nil, fmt.Errorf("sales.ParseGrid: %w", err)
	}
	table, err := sheet.NewTable(grid, headerRow, sheet.Options{Synonyms: Synonyms})
	if err != nil {
		return nil, fmt.Errorf("sales.ParseGrid: %w", err)
	}
	if err := table.Require(ColDate, ColTotalSales); err != nil {
		return nil, fmt.Errorf("sales.ParseGrid: %w", err)
	}

	r := &Report{}
	for _, row := range table.Rows {
		label := row.Get(ColDate)
		if label == "Total" {
			// Later totals rows win over subtotals.
			r.SummaryLaborCost = row.DecimalOrZero(ColLaborCost)
			r.SummaryLaborPercent = row.DecimalOrZero(ColLaborPercent)
			r.HasSummary = true
			continue
		}
		if strings.Contains(strings.ToLower(label), "total") {
			continue
		}
		date, err := sheet.ParseDate(label)
		if err != nil {
			continue
		}

		d := Day{
			Date:             date,
			TotalSales:       row.DecimalOrZero(ColTotalSales),
			CashAndCarry:     row.DecimalOrZero(ColCashAndCarry),
			Pickup:           row.DecimalOrZero(ColPickup),
			Delivery:         row.DecimalOrZero(ColDelivery),
			DeliveryCharges:  row.DecimalOrZero(ColDeliveryCharges),
			TaxableSales:     row.DecimalOrZero(ColTaxableSales),
			NonTaxableSales:  row.DecimalOrZero(ColNonTaxableSales),
			VoidsAmount:      row.DecimalOrZero(ColVoidsAmount),
			TransactionCount: row.DecimalOrZero(ColTransactionCount),
			LaborHours:       row.DecimalOrZero(ColLaborHours),
			LaborCost:        row.DecimalOrZero(ColLaborCost),
		}
		if d.TotalSales.IsPositive() {
			d.LaborPercent = d.LaborCost.Div(d.TotalSales).Mul(hundred)
		}
		r.Days = append(r.Days, d)
	}

	applyMovingAverage(r.Days, 7)
	return r, nil
}

func applyMovingAverage(days []Day, window int) {
	for i := range days {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum := decimal.Zero
		for j := start; j <= i; j++ {
			sum = sum.Add(days[j].TotalSales)
		}
		days[i].MovingAverage = sum.Div(decimal.NewFromInt(int64(i - start + 1)))
	}
}

// Metrics summarizes a report.
type Metrics struct {
	Days                  int
	TotalSales            decimal.Decimal
	AverageDailySales     decimal.Decimal
	BestDay               Day
	WorstDay              Day
	TotalVoids            decimal.Decimal
	AverageDeliveryCharge decimal.Decimal
	TransactionCount      decimal.Decimal
	AverageTicket         decimal.Decimal
	LaborCost             decimal.Decimal
	LaborPercent          decimal.Decimal
	// WeekdayAverages holds mean sales per weekday present in the data.
	WeekdayAverages map[time.Weekday]decimal.Decimal
}

// Compute derives the metrics. Labor figures come from the summary row
// when the export had one and are summed from days otherwise.
func Compute(r *Report) Metrics {
	m := Metrics{Days: len(r.Days), WeekdayAverages: map[time.Weekday]decimal.Decimal{}}
	if len(r.Days) == 0 {
		return m
	}

	byWeekday := map[time.Weekday][]decimal.Decimal{}
	deliveryCharges := decimal.Zero
	laborCost := decimal.Zero
	m.BestDay, m.WorstDay = r.Days[0], r.Days[0]
	for _, d := range r.Days {
		m.TotalSales = m.TotalSales.Add(d.TotalSales)
		m.TotalVoids = m.TotalVoids.Add(d.VoidsAmount)
		m.TransactionCount = m.TransactionCount.Add(d.TransactionCount)
		deliveryCharges = deliveryCharges.Add(d.DeliveryCharges)
		laborCost = laborCost.Add(d.LaborCost)
		if d.TotalSales.GreaterThan(m.BestDay.TotalSales) {
			m.BestDay = d
		}
		if d.TotalSales.LessThan(m.WorstDay.TotalSales) {
			m.WorstDay = d
		}
		wd := d.Date.Weekday()
		byWeekday[wd] = append(byWeekday[wd], d.TotalSales)
	}

	n := decimal.NewFromInt(int64(len(r.Days)))
	m.AverageDailySales = m.TotalSales.Div(n)
	m.AverageDeliveryCharge = deliveryCharges.Div(n)
	if m.TransactionCount.IsPositive() {
		m.AverageTicket = m.TotalSales.Div(m.TransactionCount)
	}

	if r.HasSummary {
		m.LaborCost, m.LaborPercent = r.SummaryLaborCost, r.SummaryLaborPercent
	} else {
		m.LaborCost = laborCost
		if m.TotalSales.IsPositive() {
			m.LaborPercent = laborCost.Div(m.TotalSales).Mul(hundred)
		}
	}

	for wd, vals := range byWeekday {
		sum := decimal.Zero
		for _, v := range vals {
			sum = sum.Add(v)
		}
		m.WeekdayAverages[wd] = sum.Div(decimal.NewFromInt(int64(len(vals))))
	}
	return m
}

// WeekdayOrder lists weekdays Monday first, the order reports use.
func WeekdayOrder(m Metrics) []time.Weekday {
	var out []time.Weekday
	for wd := range m.WeekdayAverages {
		out = append(out, wd)
	}
	sort.Slice(out, func(i, j int) bool {
		return (out[i]+6)%7 < (out[j]+6)%7
	})
	return out
}

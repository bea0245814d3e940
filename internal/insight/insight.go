// Package insight builds narrative prompts over parsed reports and turns
// the generated text into analysis for the operator. Every function returns
// a readable fallback instead of an error when generation is unavailable.
package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/llm"
	"github.com/dvloznov/backoffice/internal/menu"
	"github.com/dvloznov/backoffice/internal/payroll"
	"github.com/dvloznov/backoffice/internal/sales"
	"github.com/shopspring/decimal"
)

const (
	AnalysisFallback = "AI analysis could not be generated at this time."
	InsightFallback  = "Could not generate insight at this time."
	NoFinancialData  = "No financial data available to provide insights."
)

// MaxDataChars caps the transaction listing sent with a financial query.
const MaxDataChars = 2000

const longDate = "January 02, 2006"

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// SalesAnalysis asks for a performance review of a sales history export.
func SalesAnalysis(ctx context.Context, gen llm.Generator, m sales.Metrics) string {
	return llm.GenerateOr(ctx, gen, salesPrompt(m), AnalysisFallback)
}

func salesPrompt(m sales.Metrics) string {
	var b strings.Builder
	b.WriteString("As a financial analyst for a pizza restaurant, analyze the following metrics and provide detailed insights and recommendations:\n\n")
	fmt.Fprintf(&b, "Total Sales: %s\n", money(m.TotalSales))
	fmt.Fprintf(&b, "Average Daily Sales: %s\n", money(m.AverageDailySales))
	fmt.Fprintf(&b, "Total Labor Cost: %s\n", money(m.LaborCost))
	fmt.Fprintf(&b, "Average Labor Percentage: %s%%\n", m.LaborPercent.StringFixed(2))
	fmt.Fprintf(&b, "Total Voids: %s\n", money(m.TotalVoids))
	fmt.Fprintf(&b, "Average Delivery Charge: %s\n", money(m.AverageDeliveryCharge))
	if m.Days > 0 {
		fmt.Fprintf(&b, "Best Sales Day: %s (%s)\n", m.BestDay.Date.Format(longDate), money(m.BestDay.TotalSales))
		fmt.Fprintf(&b, "Worst Sales Day: %s (%s)\n", m.WorstDay.Date.Format(longDate), money(m.WorstDay.TotalSales))
	} else {
		b.WriteString("Best Sales Day: N/A\nWorst Sales Day: N/A\n")
	}
	b.WriteString("\nPlease provide:\n")
	b.WriteString("1. A detailed analysis of the business performance\n")
	b.WriteString("2. Key insights about sales patterns and labor efficiency\n")
	b.WriteString("3. Specific, actionable recommendations for improvement\n")
	b.WriteString("4. Areas of concern that need attention\n\n")
	b.WriteString("Format the response in a professional, easy-to-read manner suitable for a business report.")
	return b.String()
}

// MenuAnalysis asks for menu and pricing recommendations.
func MenuAnalysis(ctx context.Context, gen llm.Generator, r *menu.Report, m menu.Metrics) string {
	return llm.GenerateOr(ctx, gen, menuPrompt(r, m), AnalysisFallback)
}

func menuPrompt(r *menu.Report, m menu.Metrics) string {
	var b strings.Builder
	b.WriteString("As an investment banking analyst specializing in restaurant operations, provide a detailed analysis and recommendations based on the following menu sales data:\n\n")
	if !r.Start.IsZero() {
		fmt.Fprintf(&b, "Period: %s to %s\n\n", r.Start.Format(longDate), r.End.Format(longDate))
	}
	b.WriteString("Key Metrics:\n")
	fmt.Fprintf(&b, "- Total Sales: %s\n", money(m.TotalSales))
	fmt.Fprintf(&b, "- Total Items Sold: %s\n", m.TotalItems.StringFixed(0))
	fmt.Fprintf(&b, "- Average Item Price: %s\n", money(m.AveragePrice))
	fmt.Fprintf(&b, "- Total Menu Items: %d\n\n", len(r.Items))

	writeItems(&b, "Top 5 Items by Sales:", m.Top)
	writeItems(&b, "Bottom 5 Items by Sales:", m.Bottom)

	b.WriteString("Please provide:\n")
	b.WriteString("1. A detailed analysis of the business performance\n")
	b.WriteString("2. Specific marketing and promotional recommendations\n")
	b.WriteString("3. Menu optimization suggestions\n")
	b.WriteString("4. Pricing strategy insights\n")
	b.WriteString("5. Growth opportunities\n\n")
	b.WriteString("Format the response in a professional, investment banking style with clear sections and bullet points where appropriate.")
	return b.String()
}

func writeItems(b *strings.Builder, title string, items []menu.Item) {
	b.WriteString(title)
	b.WriteString("\n")
	for _, it := range items {
		fmt.Fprintf(b, "- %s: qty %s, sales %s, price %s\n",
			it.Name, it.Quantity.String(), money(it.TotalSales), money(it.Price))
	}
	b.WriteString("\n")
}

// FinancialInsight answers a free-form question about categorized
// transactions.
func FinancialInsight(ctx context.Context, gen llm.Generator, txs []domain.Transaction, query string) string {
	if len(txs) == 0 {
		return NoFinancialData
	}
	return llm.GenerateOr(ctx, gen, financialPrompt(txs, query), InsightFallback)
}

func financialPrompt(txs []domain.Transaction, query string) string {
	var data strings.Builder
	for _, tx := range txs {
		fmt.Fprintf(&data, "%s  %s  %s  %s\n",
			tx.Date.Format(time.DateOnly), tx.Description, tx.Amount.StringFixed(2), tx.Category)
	}
	summary := data.String()
	if len(summary) > MaxDataChars {
		summary = summary[:MaxDataChars]
	}

	var b strings.Builder
	b.WriteString("You are a financial analyst. Based on the following transaction data, answer the user's query.\n\n")
	b.WriteString("Transaction Data (first few rows/summary):\n")
	b.WriteString(summary)
	fmt.Fprintf(&b, "\nUser Query: %s\n\n", query)
	b.WriteString("Provide a concise and insightful answer.")
	return b.String()
}

// PayrollSummary writes a short narrative for the payroll run email.
func PayrollSummary(ctx context.Context, gen llm.Generator, res *payroll.Result) string {
	return llm.GenerateOr(ctx, gen, payrollPrompt(res), AnalysisFallback)
}

func payrollPrompt(res *payroll.Result) string {
	t := res.Totals
	var b strings.Builder
	b.WriteString("As a restaurant operations manager, summarize this payroll run for the owner in a few short paragraphs:\n\n")
	fmt.Fprintf(&b, "Employees Paid: %d\n", t.Employees)
	fmt.Fprintf(&b, "Total Hours: %s\n", t.Hours.StringFixed(2))
	fmt.Fprintf(&b, "Total Base Pay: %s\n", money(t.BasePay))
	fmt.Fprintf(&b, "Total Driver Reimbursement: %s\n", money(t.DriverReimbursement))
	fmt.Fprintf(&b, "Total Tips: %s\n", money(t.OtherTips))
	fmt.Fprintf(&b, "Total Pay: %s\n", money(t.TotalPay))
	if len(res.RowErrors) > 0 {
		fmt.Fprintf(&b, "Rows Skipped: %d\n", len(res.RowErrors))
	}
	b.WriteString("\nCall out unusually high hours, large tip totals and any skipped rows.")
	return b.String()
}

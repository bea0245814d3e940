package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/llm"
	"github.com/dvloznov/backoffice/internal/menu"
	"github.com/dvloznov/backoffice/internal/payroll"
	"github.com/dvloznov/backoffice/internal/sales"
	"github.com/shopspring/decimal"
)

func failing() *llm.MockGenerator {
	return &llm.MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
}

func echo(text string) *llm.MockGenerator {
	return &llm.MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return text, nil
		},
	}
}

func TestSalesAnalysis(t *testing.T) {
	ctx := context.Background()
	day := sales.Day{Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), TotalSales: decimal.NewFromInt(1200)}
	m := sales.Metrics{Days: 1, TotalSales: decimal.NewFromInt(1200), BestDay: day, WorstDay: day}

	gen := echo("  Sales look strong.  ")
	if got := SalesAnalysis(ctx, gen, m); got != "Sales look strong." {
		t.Errorf("SalesAnalysis() = %q, want %q", got, "Sales look strong.")
	}
	prompt := gen.Prompts()[0]
	for _, want := range []string{"Total Sales: $1200.00", "Best Sales Day: March 04, 2024 ($1200.00)"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	if got := SalesAnalysis(ctx, failing(), m); got != AnalysisFallback {
		t.Errorf("SalesAnalysis() with failing generator = %q, want fallback", got)
	}
	if got := SalesAnalysis(ctx, nil, sales.Metrics{}); got != AnalysisFallback {
		t.Errorf("SalesAnalysis() with nil generator = %q, want fallback", got)
	}
}

func TestMenuAnalysis(t *testing.T) {
	items := []menu.Item{
		{Name: "Large Pizza", Quantity: decimal.NewFromInt(10), TotalSales: decimal.NewFromInt(150), Price: decimal.NewFromInt(15)},
	}
	r := &menu.Report{
		Items: items,
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	gen := echo("ok")
	MenuAnalysis(context.Background(), gen, r, menu.Compute(items))

	prompt := gen.Prompts()[0]
	for _, want := range []string{"Period: January 01, 2024 to January 31, 2024", "- Large Pizza: qty 10", "Total Menu Items: 1"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestFinancialInsight(t *testing.T) {
	ctx := context.Background()

	gen := echo("answer")
	if got := FinancialInsight(ctx, gen, nil, "how are we doing?"); got != NoFinancialData {
		t.Errorf("FinancialInsight(empty) = %q, want %q", got, NoFinancialData)
	}
	if gen.Calls() != 0 {
		t.Errorf("generator called %d times for empty data, want 0", gen.Calls())
	}

	var txs []domain.Transaction
	for i := 0; i < 100; i++ {
		txs = append(txs, domain.Transaction{
			Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			Description: "SYSCO FOOD SERVICES INVOICE PAYMENT",
			Amount:      decimal.NewFromInt(-250),
			Category:    "COGS - Food - Sysco",
		})
	}
	if got := FinancialInsight(ctx, gen, txs, "top expense?"); got != "answer" {
		t.Errorf("FinancialInsight() = %q, want %q", got, "answer")
	}
	prompt := gen.Prompts()[0]
	if !strings.Contains(prompt, "User Query: top expense?") {
		t.Errorf("prompt missing query:\n%s", prompt)
	}
	start := strings.Index(prompt, "summary):\n") + len("summary):\n")
	end := strings.Index(prompt, "\nUser Query:")
	if n := end - start; n > MaxDataChars {
		t.Errorf("data section = %d chars, want <= %d", n, MaxDataChars)
	}

	if got := FinancialInsight(ctx, failing(), txs, "q"); got != InsightFallback {
		t.Errorf("FinancialInsight() with failing generator = %q, want %q", got, InsightFallback)
	}
}

func TestPayrollSummary(t *testing.T) {
	res := &payroll.Result{
		Totals:    payroll.Totals{Employees: 3, TotalPay: decimal.NewFromInt(979)},
		RowErrors: []*payroll.RowError{{Row: 14}},
	}
	gen := echo("summary")
	if got := PayrollSummary(context.Background(), gen, res); got != "summary" {
		t.Errorf("PayrollSummary() = %q, want %q", got, "summary")
	}
	prompt := gen.Prompts()[0]
	for _, want := range []string{"Employees Paid: 3", "Total Pay: $979.00", "Rows Skipped: 1"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

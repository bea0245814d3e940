package categorize

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/llm"
	"github.com/dvloznov/backoffice/internal/rules"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func txn(desc string, amount float64) Input {
	return Input{Description: desc, Amount: decimal.NewFromFloat(amount)}
}

func newTestCategorizer(t *testing.T, gen llm.Generator) (*Categorizer, *rules.RuleSet) {
	t.Helper()
	learned := rules.New(filepath.Join(t.TempDir(), "learned.json"))
	c := New(Options{
		Learned:   learned,
		Generator: gen,
		Logger:    zerolog.Nop(),
	})
	return c, learned
}

func TestCategorize_Overrides(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		want  string
	}{
		{"ebf loan", txn("EBF HOLDINGS LLC ACH", -500), "Banking - Loan Payment - EBF"},
		{"shift4 credit", txn("SHIFT4 PAYMENTS DEP", 100), "Revenue - POS - Credit Card"},
		{"shift4 debit", txn("SHIFT4 PAYMENTS FEE", -100), "Merchant Fees - Shift4"},
		{"rewards settlement credit", txn("REWARDS NETWORK SETTLEMENT", 100), "Revenue - Credit Card Reimbursement"},
		{"rewards settlement debit", txn("REWARDS NETWORK SETTLEMENT", -100), "Merchant Fees - Rewards Network"},
		{"check", txn("CHECK # 1042", -300), "Payroll - Manual Check - Hourly"},
		{"atm", txn("ATM W/D 12 MAIN ST", -60), "Bank Fees - ATM Withdrawal"},
		{"deposit credit", txn("DEPOSIT", 500), "Revenue - General - In-Store"},
		{"deposit debit", txn("DEPOSIT CORRECTION", -500), "Banking - Debit Transaction"},
		{"specific before generic", txn("SOUTHERN GLAZERS WINE", -100), "COGS - Alcohol Vendor - Southern Glazer"},
		{"generic southern", txn("SOUTHERN DISTRIBUTING", -100), "Cost of Goods Sold - Alcohol"},
		{"grubhub", txn("GRUBHUB HOLDINGS", 100), "Revenue - Delivery - Grubhub"},
		{"service charge", txn("MONTHLY SERVICE CHARGE", -15), "Bank Fees - Miscellaneous - Service Charge"},
	}

	gen := &llm.MockGenerator{}
	c, _ := newTestCategorizer(t, gen)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Categorize(context.Background(), tt.input)
			if got.Category != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.input.Description, got.Category, tt.want)
			}
			if got.Source != domain.SourceOverride {
				t.Errorf("Categorize(%q) source = %q, want %q", tt.input.Description, got.Source, domain.SourceOverride)
			}
		})
	}
	if gen.Calls() != 0 {
		t.Errorf("generator calls = %d, want 0", gen.Calls())
	}
}

func TestCategorize_UnmatchedDebitNeverGenerates(t *testing.T) {
	gen := &llm.MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Revenue - General - In-Store", nil
		},
	}
	c, _ := newTestCategorizer(t, gen)

	got := c.Categorize(context.Background(), txn("MYSTERYCO PURCHASE", -20))
	want := Result{Category: GenericOutflow, Source: domain.SourceDebitDefault}
	if got != want {
		t.Errorf("Categorize() = %+v, want %+v", got, want)
	}
	if gen.Calls() != 0 {
		t.Errorf("generator calls = %d, want 0", gen.Calls())
	}
}

func TestCategorize_LearnedRuleSkipsGenerator(t *testing.T) {
	gen := &llm.MockGenerator{}
	c, learned := newTestCategorizer(t, gen)
	learned.Set("acmevendor", "Utilities - Gas Service")

	got := c.Categorize(context.Background(), txn("ACMEVENDOR INV 9", 50))
	want := Result{Category: "Utilities - Gas Service", Source: domain.SourceLearned}
	if got != want {
		t.Errorf("Categorize() = %+v, want %+v", got, want)
	}
	if gen.Calls() != 0 {
		t.Errorf("generator calls = %d, want 0", gen.Calls())
	}
}

func TestCategorize_JournalAfterLearned(t *testing.T) {
	learned := rules.New(filepath.Join(t.TempDir(), "learned.json"))
	journal := rules.New(filepath.Join(t.TempDir(), "journal.json"))
	learned.Set("acmevendor", "Utilities - Gas Service")
	journal.Set("acmevendor", "Insurance - General Liability")
	journal.Set("zenithco", "Insurance - General Liability")

	c := New(Options{Learned: learned, Journal: journal, Logger: zerolog.Nop()})

	if got := c.Categorize(context.Background(), txn("ACMEVENDOR", 10)); got.Source != domain.SourceLearned {
		t.Errorf("Categorize(ACMEVENDOR) source = %q, want %q", got.Source, domain.SourceLearned)
	}
	got := c.Categorize(context.Background(), txn("ZENITHCO PREMIUM", 10))
	want := Result{Category: "Insurance - General Liability", Source: domain.SourceJournal}
	if got != want {
		t.Errorf("Categorize(ZENITHCO) = %+v, want %+v", got, want)
	}
}

func TestCategorize_GeneratedCreditIsLearned(t *testing.T) {
	gen := &llm.MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "```\n\"Revenue - Gaming - Slots\"\n```", nil
		},
	}
	c, learned := newTestCategorizer(t, gen)

	got := c.Categorize(context.Background(), txn("WIRE FROM MYSTERYCO", 75))
	want := Result{Category: "Revenue - Gaming - Slots", Source: domain.SourceGenerated}
	if got != want {
		t.Fatalf("Categorize() = %+v, want %+v", got, want)
	}

	if cat, ok := learned.Get("mysteryco"); !ok || cat != want.Category {
		t.Errorf("learned.Get(mysteryco) = %q, %v, want %q, true", cat, ok, want.Category)
	}

	again := c.Categorize(context.Background(), txn("MYSTERYCO BONUS", 10))
	if again.Source != domain.SourceLearned {
		t.Errorf("second Categorize() source = %q, want %q", again.Source, domain.SourceLearned)
	}
	if gen.Calls() != 1 {
		t.Errorf("generator calls = %d, want 1", gen.Calls())
	}

	prompt := gen.Prompts()[0]
	for _, part := range []string{"WIRE FROM MYSTERYCO", "75.00 (Credit)", "Revenue - Miscellaneous", "Return ONLY the exact accounting category string."} {
		if !strings.Contains(prompt, part) {
			t.Errorf("prompt missing %q", part)
		}
	}
}

func TestCategorize_MemoizesGeneration(t *testing.T) {
	gen := &llm.MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Revenue - Miscellaneous", nil
		},
	}
	c, learned := newTestCategorizer(t, gen)

	// Every token is too short to learn, so only the memo can stop a
	// second call.
	for i := 0; i < 3; i++ {
		got := c.Categorize(context.Background(), txn("ZZ QQ 12", 5))
		if got.Category != "Revenue - Miscellaneous" {
			t.Errorf("Categorize() = %q, want %q", got.Category, "Revenue - Miscellaneous")
		}
	}
	if gen.Calls() != 1 {
		t.Errorf("generator calls = %d, want 1", gen.Calls())
	}
	if learned.Len() != 0 {
		t.Errorf("learned.Len() = %d, want 0", learned.Len())
	}
}

func TestCategorize_GeneratorFailureFallsBack(t *testing.T) {
	gen := &llm.MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		},
	}
	c, learned := newTestCategorizer(t, gen)

	got := c.Categorize(context.Background(), txn("WIRE FROM MYSTERYCO", 75))
	want := Result{Category: CreditFallback, Source: domain.SourceFallback}
	if got != want {
		t.Errorf("Categorize() = %+v, want %+v", got, want)
	}
	if learned.Len() != 0 {
		t.Errorf("learned.Len() = %d, want 0 after failure", learned.Len())
	}
}

func TestCategorize_NoGenerator(t *testing.T) {
	c, _ := newTestCategorizer(t, nil)
	got := c.Categorize(context.Background(), txn("WIRE FROM MYSTERYCO", 75))
	want := Result{Category: CreditFallback, Source: domain.SourceFallback}
	if got != want {
		t.Errorf("Categorize() = %+v, want %+v", got, want)
	}
}

func TestGenerate_RevenueGuardOnDebit(t *testing.T) {
	gen := &llm.MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "Revenue - General - In-Store", nil
		},
	}
	c, _ := newTestCategorizer(t, gen)

	got := c.generate(context.Background(), txn("MYSTERYCO PURCHASE", -20))
	want := Result{Category: GenericOutflow, Source: domain.SourceGenerated}
	if got != want {
		t.Errorf("generate() = %+v, want %+v", got, want)
	}
}

func TestCategorizeAll(t *testing.T) {
	c, _ := newTestCategorizer(t, nil)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{
		{Date: day, Description: "CHECK 2201", Amount: decimal.NewFromInt(-400)},
		{Date: day, Description: "GRUBHUB", Amount: decimal.NewFromInt(120)},
		{Date: day, Description: "MYSTERYCO", Amount: decimal.NewFromInt(-9)},
	}

	counts := c.CategorizeAll(context.Background(), txs)

	if txs[0].CheckNumber != "2201" {
		t.Errorf("txs[0].CheckNumber = %q, want %q", txs[0].CheckNumber, "2201")
	}
	if txs[0].Category != "Payroll - Manual Check - Hourly" {
		t.Errorf("txs[0].Category = %q, want %q", txs[0].Category, "Payroll - Manual Check - Hourly")
	}
	if txs[2].CategorySource != domain.SourceDebitDefault {
		t.Errorf("txs[2].CategorySource = %q, want %q", txs[2].CategorySource, domain.SourceDebitDefault)
	}
	if counts[domain.SourceOverride] != 2 || counts[domain.SourceDebitDefault] != 1 {
		t.Errorf("counts = %v, want 2 override and 1 debit_default", counts)
	}
}

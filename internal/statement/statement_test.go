package statement

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func TestStandardizeColumn(t *testing.T) {
	tests := map[string]string{
		"Posting Date":            ColDate,
		"Transaction Description": ColDescription,
		"Withdrawal":              ColDebit,
		"Deposit":                 ColCredit,
		"  Amount ":               ColAmount,
		"Check Number":            "check number",
	}
	for in, want := range tests {
		if got := StandardizeColumn(in); got != want {
			t.Errorf("StandardizeColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseGrid_DebitCredit(t *testing.T) {
	grid := sheet.Grid{
		{"Account 1234"},
		{"Posting Date", "Description", "Withdrawal", "Deposit"},
		{"03/01/2024", "GRUBHUB", "", "120.50"},
		{"03/02/2024", "CHECK # 1042", "300.00", ""},
		{"not a date", "BROKEN", "1", ""},
		{"", "", "", ""},
	}

	txs, err := ParseGrid(grid, zerolog.Nop())
	if err != nil {
		t.Fatalf("ParseGrid() error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len(txs) = %d, want 2", len(txs))
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("120.50")) {
		t.Errorf("txs[0].Amount = %s, want 120.50", txs[0].Amount)
	}
	if !txs[1].Amount.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("txs[1].Amount = %s, want -300", txs[1].Amount)
	}
	if txs[1].CheckNumber != "1042" {
		t.Errorf("txs[1].CheckNumber = %q, want 1042", txs[1].CheckNumber)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !txs[0].Date.Equal(want) {
		t.Errorf("txs[0].Date = %v, want %v", txs[0].Date, want)
	}
}

func TestParseGrid_SignedAmount(t *testing.T) {
	grid := sheet.Grid{
		{"Date", "Memo", "Amount"},
		{"2024-03-01", "AMEREN", "-80.10"},
	}
	txs, err := ParseGrid(grid, zerolog.Nop())
	if err != nil {
		t.Fatalf("ParseGrid() error = %v", err)
	}
	if len(txs) != 1 || !txs[0].Amount.Equal(decimal.RequireFromString("-80.10")) {
		t.Errorf("ParseGrid() = %+v, want one -80.10 transaction", txs)
	}
}

func TestParseGrid_UnreadableAmount(t *testing.T) {
	var buf bytes.Buffer
	grid := sheet.Grid{
		{"Date", "Memo", "Amount"},
		{"2024-03-01", "AMEREN", "n0t-a-number"},
		{"2024-03-02", "SHIFT4", "12.50"},
	}
	txs, err := ParseGrid(grid, zerolog.New(&buf))
	if err != nil {
		t.Fatalf("ParseGrid() error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("len(txs) = %d, want 2", len(txs))
	}
	if !txs[0].Amount.IsZero() {
		t.Errorf("txs[0].Amount = %s, want 0", txs[0].Amount)
	}
	if !strings.Contains(buf.String(), "unreadable amount") || !strings.Contains(buf.String(), `"row":2`) {
		t.Errorf("log = %q, want a warning for row 2", buf.String())
	}
}

func TestParseGrid_NoHeader(t *testing.T) {
	grid := sheet.Grid{{"Date", "Amount"}, {"2024-03-01", "1"}}
	_, err := ParseGrid(grid, zerolog.Nop())
	if !errors.Is(err, sheet.ErrHeaderNotFound) {
		t.Errorf("ParseGrid() error = %v, want ErrHeaderNotFound", err)
	}
}

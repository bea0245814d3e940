package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kush Patel", "kush patel"},
		{"A, Angie", "a angie"},
		{"  Sonu   Mitha ", "sonu mitha"},
		{"Delivery\tDelivery Driver", "delivery delivery driver"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTransaction_IsCredit(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{"12.50", true},
		{"-12.50", false},
		{"0", false},
	}

	for _, tt := range tests {
		tx := Transaction{Amount: decimal.RequireFromString(tt.amount)}
		if got := tx.IsCredit(); got != tt.want {
			t.Errorf("IsCredit(%s) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestTransaction_DedupeKey(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := Transaction{Date: day, Description: "SYSCO", Amount: decimal.RequireFromString("-10.00")}
	b := Transaction{Date: day, Description: "SYSCO", Amount: decimal.RequireFromString("-10")}

	if a.DedupeKey() != b.DedupeKey() {
		t.Errorf("DedupeKey() differs for equal amounts: %q vs %q", a.DedupeKey(), b.DedupeKey())
	}
}

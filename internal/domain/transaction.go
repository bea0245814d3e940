package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategorySource records which stage of the categorizer produced a category.
type CategorySource string

const (
	SourceOverride     CategorySource = "override"
	SourceLearned      CategorySource = "learned"
	SourceJournal      CategorySource = "journal"
	SourceDebitDefault CategorySource = "debit_default"
	SourceGenerated    CategorySource = "generated"
	SourceFallback     CategorySource = "fallback"
)

// Transaction is one bank statement line. Amount is signed: positive for
// money in (credit), negative for money out (debit).
type Transaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	CheckNumber string // extracted from the description, empty when absent

	Category       string // empty until categorized
	CategorySource CategorySource
}

// IsCredit reports whether the transaction is an inflow.
func (t Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// DedupeKey identifies a statement line for duplicate detection across
// overlapping statement exports.
func (t Transaction) DedupeKey() string {
	return t.Date.Format("2006-01-02") + "|" + t.Description + "|" + t.Amount.String()
}

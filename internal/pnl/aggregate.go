// Package pnl aggregates categorized transactions into a profit and loss
// statement.
package pnl

import (
	"fmt"
	"sort"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultRowOffset is the worksheet row of the first template line; the
// title block and the column header sit above it.
const DefaultRowOffset = 6

// UncategorizedKey reports transactions with no category in Unmapped.
const UncategorizedKey = "(uncategorized)"

// Options controls aggregation.
type Options struct {
	RowOffset int
	Title     string
	Period    string
}

// Entry is a template line with its computed amount.
type Entry struct {
	Line
	Row    int
	Amount decimal.Decimal
	// Cell is the worksheet formula with a leading "=" for Formula lines.
	Cell string
}

// Statement is an aggregated profit and loss statement.
type Statement struct {
	Title     string
	Period    string
	RowOffset int
	Entries   []Entry

	// Unmapped totals categories that no line claims. They are excluded
	// from every subtotal.
	Unmapped     map[string]decimal.Decimal
	Transactions int
	Duplicates   int
}

// Value returns the amount of the line with key.
func (s *Statement) Value(key string) (decimal.Decimal, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e.Amount, true
		}
	}
	return decimal.Zero, false
}

// UnmappedCategories returns the unmapped category names sorted.
func (s *Statement) UnmappedCategories() []string {
	out := make([]string, 0, len(s.Unmapped))
	for c := range s.Unmapped {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LogUnmapped emits one warning per unmapped category.
func (s *Statement) LogUnmapped(log zerolog.Logger) {
	for _, c := range s.UnmappedCategories() {
		log.Warn().
			Str("category", c).
			Str("amount", s.Unmapped[c].StringFixed(2)).
			Msg("category not mapped to any statement line, excluded from totals")
	}
}

// Aggregate dedupes txs on date, description and amount, then computes
// every template line in order.
func Aggregate(txs []domain.Transaction, tmpl Template, opts Options) (*Statement, error) {
	offset := opts.RowOffset
	if offset <= 0 {
		offset = DefaultRowOffset
	}

	stmt := &Statement{
		Title:     opts.Title,
		Period:    opts.Period,
		RowOffset: offset,
		Unmapped:  make(map[string]decimal.Decimal),
	}

	byCategory := make(map[string]decimal.Decimal)
	seen := make(map[string]struct{}, len(txs))
	for _, tx := range txs {
		key := tx.DedupeKey()
		if _, dup := seen[key]; dup {
			stmt.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		stmt.Transactions++
		byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
	}

	rows := make(map[string]int, len(tmpl))
	mapped := make(map[string]struct{})
	for i, l := range tmpl {
		if l.Key != "" {
			if _, dup := rows[l.Key]; dup {
				return nil, fmt.Errorf("Aggregate: duplicate line key %q", l.Key)
			}
			rows[l.Key] = i + offset
		}
		for _, c := range l.Categories {
			mapped[c] = struct{}{}
		}
	}

	values := make(map[int]decimal.Decimal, len(tmpl))
	for i, l := range tmpl {
		e := Entry{Line: l, Row: i + offset}
		switch l.Kind {
		case Header:
		case Value:
			sum := decimal.Zero
			for _, c := range l.Categories {
				sum = sum.Add(byCategory[c])
			}
			if l.Expense {
				sum = sum.Abs()
			}
			e.Amount = sum
		case Formula:
			f, err := substitute(l.Formula, rows)
			if err != nil {
				return nil, fmt.Errorf("Aggregate: line %q: %w", l.Label, err)
			}
			amount, err := evaluate(f, values)
			if err != nil {
				return nil, fmt.Errorf("Aggregate: line %q: evaluating %s: %w", l.Label, f, err)
			}
			e.Amount = amount
			e.Cell = "=" + f
		default:
			return nil, fmt.Errorf("Aggregate: line %q: unknown kind %d", l.Label, l.Kind)
		}
		values[e.Row] = e.Amount
		stmt.Entries = append(stmt.Entries, e)
	}

	for c, amount := range byCategory {
		if _, ok := mapped[c]; ok {
			continue
		}
		if c == "" {
			c = UncategorizedKey
		}
		stmt.Unmapped[c] = stmt.Unmapped[c].Add(amount)
	}
	return stmt, nil
}

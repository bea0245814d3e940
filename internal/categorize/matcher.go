package categorize

import (
	"strings"

	"github.com/dvloznov/backoffice/internal/rules"
	"github.com/shopspring/decimal"
)

// Input is what the cascade sees of a transaction.
type Input struct {
	Description string
	Amount      decimal.Decimal
	CheckNumber string
}

// IsCredit reports whether the amount is an inflow.
func (in Input) IsCredit() bool {
	return in.Amount.IsPositive()
}

func (in Input) lower() string {
	return strings.ToLower(in.Description)
}

// Matcher is one stage of the categorization cascade.
type Matcher interface {
	// Name identifies the matcher in logs.
	Name() string
	// Match returns a category and true when the matcher claims the input.
	Match(in Input) (string, bool)
}

// Sign restricts a Rule to credits or debits.
type Sign int

const (
	AnySign Sign = iota
	CreditOnly
	DebitOnly
)

// Rule is a single override: any of Substrings in the lowercased
// description selects Category. DebitCategory, when set, replaces Category
// for debits.
type Rule struct {
	Substrings    []string
	Sign          Sign
	RequireCheck  bool
	Category      string
	DebitCategory string
}

// Contains matches any substring regardless of sign.
func Contains(category string, substrings ...string) Rule {
	return Rule{Substrings: substrings, Category: category}
}

// ContainsOnCredit matches only inflows.
func ContainsOnCredit(category string, substrings ...string) Rule {
	return Rule{Substrings: substrings, Sign: CreditOnly, Category: category}
}

// ContainsOnDebit matches only outflows.
func ContainsOnDebit(category string, substrings ...string) Rule {
	return Rule{Substrings: substrings, Sign: DebitOnly, Category: category}
}

// Signed picks a category by sign once a substring matches.
func Signed(credit, debit string, substrings ...string) Rule {
	return Rule{Substrings: substrings, Category: credit, DebitCategory: debit}
}

// HasCheckNumber matches any transaction carrying a check number.
func HasCheckNumber(category string) Rule {
	return Rule{RequireCheck: true, Category: category}
}

// Name implements Matcher.
func (r Rule) Name() string {
	if len(r.Substrings) > 0 {
		return r.Substrings[0]
	}
	if r.RequireCheck {
		return "check number"
	}
	return r.Category
}

// Match implements Matcher.
func (r Rule) Match(in Input) (string, bool) {
	return r.match(in, in.lower())
}

func (r Rule) match(in Input, desc string) (string, bool) {
	credit := in.IsCredit()
	switch r.Sign {
	case CreditOnly:
		if !credit {
			return "", false
		}
	case DebitOnly:
		if credit {
			return "", false
		}
	}
	if r.RequireCheck && in.CheckNumber == "" {
		return "", false
	}
	if len(r.Substrings) > 0 && !containsAny(desc, r.Substrings) {
		return "", false
	}
	if r.DebitCategory != "" && !credit {
		return r.DebitCategory, true
	}
	return r.Category, true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// OverrideMatcher evaluates an ordered rule table; the first rule that
// matches wins.
type OverrideMatcher struct {
	rules []Rule
}

// NewOverrideMatcher returns a matcher over rules in the given order.
func NewOverrideMatcher(rules []Rule) *OverrideMatcher {
	return &OverrideMatcher{rules: rules}
}

func (m *OverrideMatcher) Name() string { return "override" }

func (m *OverrideMatcher) Match(in Input) (string, bool) {
	desc := in.lower()
	for _, r := range m.rules {
		if category, ok := r.match(in, desc); ok {
			return category, true
		}
	}
	return "", false
}

// RuleSetMatcher matches against a persisted keyword rule set.
type RuleSetMatcher struct {
	name string
	set  *rules.RuleSet
}

// NewRuleSetMatcher wraps set. A nil set never matches.
func NewRuleSetMatcher(name string, set *rules.RuleSet) *RuleSetMatcher {
	return &RuleSetMatcher{name: name, set: set}
}

func (m *RuleSetMatcher) Name() string { return m.name }

func (m *RuleSetMatcher) Match(in Input) (string, bool) {
	if m.set == nil {
		return "", false
	}
	category, _, ok := m.set.Match(in.Description)
	return category, ok
}

// DebitDefault claims every outflow that reached it.
type DebitDefault struct{}

func (DebitDefault) Name() string { return "debit default" }

func (DebitDefault) Match(in Input) (string, bool) {
	if in.IsCredit() {
		return "", false
	}
	return GenericOutflow, true
}

package payroll

import (
	"fmt"
	"strings"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/ratestore"
	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Rate sources recorded on PayRecord.RateSource.
const (
	RateFromOverride = "override"
	RateFromStore    = "store"
	RateFromSheet    = "sheet"
	RateFromInferred = "inferred"
)

// hoursTolerance is how far sheet hours may drift from the back-solved
// figure before a warning is logged.
var hoursTolerance = decimal.NewFromFloat(0.01)

// Override pins rate, hours or base pay for one employee ID.
type Override struct {
	Rate    decimal.NullDecimal
	Hours   decimal.NullDecimal
	BasePay decimal.NullDecimal
}

func (o Override) basePay() (decimal.Decimal, bool) {
	if o.BasePay.Valid {
		return o.BasePay.Decimal, true
	}
	if o.Rate.Valid && o.Hours.Valid {
		return o.Rate.Decimal.Mul(o.Hours.Decimal), true
	}
	return decimal.Zero, false
}

func fixed(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

// DefaultOverrides are the per-ID pins used by the restaurant.
func DefaultOverrides() map[int]Override {
	return map[int]Override{
		123: {Rate: fixed("10.40"), Hours: fixed("40")},
		110: {Rate: fixed("15"), Hours: fixed("68")},
		4:   {BasePay: fixed("0")},
	}
}

// DefaultExcluded lists normalized names that never get an inferred rate
// and never have hours back-solved.
func DefaultExcluded() []string {
	return []string{"kush patel", "krish patel", "sonu mitha", "a angie", "delivery delivery driver", "jayesh"}
}

// inference maps a job-description substring to a starting rate.
type inference struct {
	keyword string
	rate    decimal.Decimal
}

var defaultInferences = []inference{
	{"support", decimal.NewFromInt(15)},
	{"server", decimal.NewFromInt(9)},
}

// RowError is a per-record coercion failure. The record is skipped and the
// batch continues.
type RowError struct {
	Row int // zero-based grid row of the start row
	ID  string
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (ID %q): %v", e.Row+1, e.ID, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Reconciler turns paired rows into pay records.
type Reconciler struct {
	store     *ratestore.Store
	overrides map[int]Override
	excluded  map[string]bool
	log       zerolog.Logger
}

// ReconcilerOption customizes a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithOverrides replaces the per-ID override table.
func WithOverrides(o map[int]Override) ReconcilerOption {
	return func(r *Reconciler) { r.overrides = o }
}

// WithExcluded replaces the exclusion list.
func WithExcluded(names []string) ReconcilerOption {
	return func(r *Reconciler) {
		r.excluded = make(map[string]bool, len(names))
		for _, n := range names {
			r.excluded[domain.NormalizeName(n)] = true
		}
	}
}

// NewReconciler returns a reconciler backed by store.
func NewReconciler(store *ratestore.Store, log zerolog.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{store: store, overrides: DefaultOverrides(), log: log}
	WithExcluded(DefaultExcluded())(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// fields is a group's raw values after coercion.
type fields struct {
	id      int
	name    string
	job     string
	rate    decimal.Decimal
	hours   decimal.Decimal
	hasHrs  bool
	basePay decimal.Decimal
	driver  decimal.Decimal
	cc      decimal.Decimal
	cash    decimal.Decimal
	total   decimal.Decimal
}

func parseFields(g Group) (fields, error) {
	f := fields{
		name: g.Start.Get(ColName),
		job:  g.Get(ColJobDescription),
	}

	id, ok, err := sheet.ParseDecimal(g.Start.Get(ColID))
	if err != nil || !ok || !id.Equal(id.Truncate(0)) {
		return f, fmt.Errorf("employee ID %q is not an integer", g.Start.Get(ColID))
	}
	f.id = int(id.IntPart())

	num := func(col string, dst *decimal.Decimal) (bool, error) {
		d, ok, err := sheet.ParseDecimal(g.Get(col))
		if err != nil {
			return false, fmt.Errorf("column %q: %w", col, err)
		}
		*dst = d
		return ok, nil
	}

	if _, err := num(ColRate, &f.rate); err != nil {
		return f, err
	}
	if f.hasHrs, err = num(ColHours, &f.hours); err != nil {
		return f, err
	}
	for _, m := range []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColBasePay, &f.basePay},
		{ColDriverReimbursement, &f.driver},
		{ColCCTips, &f.cc},
		{ColCashTips, &f.cash},
		{ColTotalPay, &f.total},
	} {
		if _, err := num(m.col, m.dst); err != nil {
			return f, err
		}
	}
	return f, nil
}

// Reconcile resolves every group. Coercion failures come back as row
// errors; the returned error is reserved for rate store persistence.
func (r *Reconciler) Reconcile(groups []Group) ([]domain.PayRecord, []*RowError, error) {
	var (
		records []domain.PayRecord
		rowErrs []*RowError
	)
	for _, g := range groups {
		f, err := parseFields(g)
		if err != nil {
			re := &RowError{Row: g.Start.Index, ID: g.Start.Get(ColID), Err: err}
			r.log.Warn().Err(re).Int("row", g.Start.Index+1).Msg("skipping payroll record")
			rowErrs = append(rowErrs, re)
			continue
		}
		rec, err := r.resolve(f)
		if err != nil {
			return records, rowErrs, err
		}
		records = append(records, rec)
	}
	return records, rowErrs, nil
}

func (r *Reconciler) resolve(f fields) (domain.PayRecord, error) {
	normalized := domain.NormalizeName(f.name)
	excluded := r.excluded[normalized]
	override, hasOverride := r.overrides[f.id]
	log := r.log.With().Int("employee_id", f.id).Str("name", f.name).Logger()

	rate, source := decimal.Zero, ""
	switch {
	case hasOverride && override.Rate.Valid:
		rate, source = override.Rate.Decimal, RateFromOverride
	case f.rate.IsPositive():
		rate, source = f.rate, RateFromSheet
	default:
		if stored, ok := r.store.Lookup(f.id, f.name); ok && stored.IsPositive() {
			rate, source = stored, RateFromStore
		}
	}

	if rate.IsZero() && !excluded {
		job := strings.ToLower(f.job)
		for _, inf := range defaultInferences {
			if strings.Contains(job, inf.keyword) {
				rate, source = inf.rate, RateFromInferred
				if normalized == "" {
					log.Warn().Str("rate", rate.String()).Msg("inferred rate not stored: name is empty after normalization")
					break
				}
				if err := r.store.SetName(normalized, rate); err != nil {
					return domain.PayRecord{}, fmt.Errorf("Reconcile: storing inferred rate for %q: %w", f.name, err)
				}
				log.Info().Str("rate", rate.String()).Str("job", f.job).Msg("inferred rate from job description")
				break
			}
		}
	}

	hours := f.hours
	if hasOverride && override.Hours.Valid {
		hours = override.Hours.Decimal
	}

	deductions := f.cc.Add(f.cash).Add(f.driver)
	var basePay decimal.Decimal
	if ob, ok := override.basePay(); hasOverride && ok {
		basePay = ob
	} else if hours.IsPositive() && rate.IsPositive() {
		basePay = hours.Mul(rate)
	} else if f.basePay.IsPositive() {
		basePay = f.basePay
	} else if !f.total.IsNegative() && f.total.GreaterThanOrEqual(deductions) {
		basePay = f.total.Sub(deductions)
	}

	if !excluded && rate.IsPositive() {
		solved := basePay.Div(rate)
		if f.hasHrs && solved.Sub(f.hours).Abs().GreaterThan(hoursTolerance) {
			log.Warn().
				Str("sheet_hours", f.hours.String()).
				Str("solved_hours", solved.StringFixed(2)).
				Msg("sheet hours differ from hours implied by base pay and rate")
		}
		hours = solved
	}

	rec := domain.PayRecord{
		EmployeeID:          f.id,
		Name:                f.name,
		JobDescription:      f.job,
		Rate:                rate.Round(2),
		Hours:               hours.Round(2),
		SheetHours:          f.hours.Round(2),
		BasePay:             basePay.Round(2),
		DriverReimbursement: f.driver.Round(2),
		CCTips:              f.cc.Round(2),
		CashTips:            f.cash.Round(2),
		RateSource:          source,
	}
	rec.OtherTips = rec.CCTips.Add(rec.CashTips)
	rec.TotalPay = rec.BasePay.Add(rec.OtherTips)
	return rec, nil
}

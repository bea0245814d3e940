// Package payroll reconciles payroll exports into per-employee pay records.
package payroll

import (
	"context"
	"fmt"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/ratestore"
	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Result is the outcome of one payroll file.
type Result struct {
	Records   []domain.PayRecord
	RowErrors []*RowError
	Totals    Totals
}

// Totals sums the money columns of a run.
type Totals struct {
	Employees           int
	Hours               decimal.Decimal
	BasePay             decimal.Decimal
	DriverReimbursement decimal.Decimal
	CCTips              decimal.Decimal
	CashTips            decimal.Decimal
	OtherTips           decimal.Decimal
	TotalPay            decimal.Decimal
}

// Summarize totals records.
func Summarize(records []domain.PayRecord) Totals {
	t := Totals{Employees: len(records)}
	for _, r := range records {
		t.Hours = t.Hours.Add(r.Hours)
		t.BasePay = t.BasePay.Add(r.BasePay)
		t.DriverReimbursement = t.DriverReimbursement.Add(r.DriverReimbursement)
		t.CCTips = t.CCTips.Add(r.CCTips)
		t.CashTips = t.CashTips.Add(r.CashTips)
		t.OtherTips = t.OtherTips.Add(r.OtherTips)
		t.TotalPay = t.TotalPay.Add(r.TotalPay)
	}
	return t
}

// Processor runs a payroll file end to end.
type Processor struct {
	store      *ratestore.Store
	reconciler *Reconciler
}

// NewProcessor wires a processor around store.
func NewProcessor(store *ratestore.Store, log zerolog.Logger, opts ...ReconcilerOption) *Processor {
	return &Processor{
		store:      store,
		reconciler: NewReconciler(store, log, opts...),
	}
}

// ProcessFile parses one payroll export and flushes the rate store once the
// file is done. Header and column failures wrap sheet.ErrHeaderNotFound or
// sheet.ErrColumnMissing.
func (p *Processor) ProcessFile(ctx context.Context, filename string, data []byte) (*Result, error) {
	grid, err := sheet.Read(filename, data)
	if err != nil {
		return nil, fmt.Errorf("ProcessFile: reading %s: %w", filename, err)
	}
	return p.ProcessGrid(ctx, grid)
}

// ProcessGrid is ProcessFile for an already-read grid.
func (p *Processor) ProcessGrid(ctx context.Context, grid sheet.Grid) (*Result, error) {
	headerRow, err := sheet.LocateHeader(grid, HeaderKeywords, HeaderWindow)
	if err != nil {
		return nil, fmt.Errorf("ProcessFile: locating header: %w", err)
	}
	table, err := sheet.NewTable(grid, headerRow, TableOptions())
	if err != nil {
		return nil, fmt.Errorf("ProcessFile: building table: %w", err)
	}
	if err := table.Require(ColID, ColName); err != nil {
		return nil, fmt.Errorf("ProcessFile: %w", err)
	}

	groups := Pair(table.Rows)
	records, rowErrs, err := p.reconciler.Reconcile(groups)
	if err != nil {
		return nil, fmt.Errorf("ProcessFile: %w", err)
	}
	if err := p.store.Flush(); err != nil {
		return nil, fmt.Errorf("ProcessFile: flushing rate store: %w", err)
	}

	log := p.reconciler.log
	log.Info().
		Int("header_row", headerRow+1).
		Int("records", len(records)).
		Int("row_errors", len(rowErrs)).
		Msg("processed payroll file")

	return &Result{Records: records, RowErrors: rowErrs, Totals: Summarize(records)}, nil
}

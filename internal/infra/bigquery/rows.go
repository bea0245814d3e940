package bigquery

import (
	"math/big"
	"strconv"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run statuses stored in processing_runs.status.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// RunRow is one processed file.
type RunRow struct {
	RunID     string `bigquery:"run_id"`     // REQUIRED
	Kind      string `bigquery:"kind"`       // REQUIRED: payroll, statement, sales, menu
	SourceURI string `bigquery:"source_uri"` // NULLABLE

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	Status       string `bigquery:"status"`        // REQUIRED
	Summary      string `bigquery:"summary"`       // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE
}

// TransactionRow is a categorized bank statement line.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	RunID         string `bigquery:"run_id"`         // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Description     string     `bigquery:"description"`      // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC, signed

	CheckNumber    bigquery.NullString `bigquery:"check_number"`    // NULLABLE
	Category       string              `bigquery:"category"`        // REQUIRED
	CategorySource string              `bigquery:"category_source"` // REQUIRED

	CreatedTS time.Time `bigquery:"created_ts"`
}

// PayRecordRow is one employee's reconciled pay.
type PayRecordRow struct {
	PayRecordID string `bigquery:"pay_record_id"` // REQUIRED
	RunID       string `bigquery:"run_id"`        // REQUIRED

	EmployeeID     string `bigquery:"employee_id"`
	Name           string `bigquery:"name"`
	JobDescription string `bigquery:"job_description"`

	Rate                *big.Rat `bigquery:"rate"`
	Hours               *big.Rat `bigquery:"hours"`
	BasePay             *big.Rat `bigquery:"base_pay"`
	DriverReimbursement *big.Rat `bigquery:"driver_reimbursement"`
	CCTips              *big.Rat `bigquery:"cc_tips"`
	CashTips            *big.Rat `bigquery:"cash_tips"`
	OtherTips           *big.Rat `bigquery:"other_tips"`
	TotalPay            *big.Rat `bigquery:"total_pay"`

	RateSource string    `bigquery:"rate_source"`
	CreatedTS  time.Time `bigquery:"created_ts"`
}

func rat(d decimal.Decimal) *big.Rat {
	return d.Rat()
}

// NewTransactionRow converts a categorized transaction.
func NewTransactionRow(runID string, tx domain.Transaction, now time.Time) *TransactionRow {
	return &TransactionRow{
		TransactionID:   uuid.NewString(),
		RunID:           runID,
		TransactionDate: civil.DateOf(tx.Date),
		Description:     tx.Description,
		Amount:          rat(tx.Amount),
		CheckNumber:     bigquery.NullString{StringVal: tx.CheckNumber, Valid: tx.CheckNumber != ""},
		Category:        tx.Category,
		CategorySource:  string(tx.CategorySource),
		CreatedTS:       now,
	}
}

// NewPayRecordRow converts a reconciled pay record.
func NewPayRecordRow(runID string, r domain.PayRecord, now time.Time) *PayRecordRow {
	return &PayRecordRow{
		PayRecordID:         uuid.NewString(),
		RunID:               runID,
		EmployeeID:          strconv.Itoa(r.EmployeeID),
		Name:                r.Name,
		JobDescription:      r.JobDescription,
		Rate:                rat(r.Rate),
		Hours:               rat(r.Hours),
		BasePay:             rat(r.BasePay),
		DriverReimbursement: rat(r.DriverReimbursement),
		CCTips:              rat(r.CCTips),
		CashTips:            rat(r.CashTips),
		OtherTips:           rat(r.OtherTips),
		TotalPay:            rat(r.TotalPay),
		RateSource:          r.RateSource,
		CreatedTS:           now,
	}
}

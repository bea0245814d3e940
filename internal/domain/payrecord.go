package domain

import "github.com/shopspring/decimal"

// PayRecord is one employee's reconciled pay for a payroll run.
//
// TotalPay always equals BasePay + OtherTips, and OtherTips always equals
// CCTips + CashTips.
type PayRecord struct {
	EmployeeID     int
	Name           string
	JobDescription string

	Rate  decimal.Decimal
	Hours decimal.Decimal
	// SheetHours is the hours figure the export reported, before any
	// back-solving against the rate. Zero when the sheet had none.
	SheetHours decimal.Decimal

	BasePay             decimal.Decimal
	DriverReimbursement decimal.Decimal
	CCTips              decimal.Decimal
	CashTips            decimal.Decimal
	OtherTips           decimal.Decimal
	TotalPay            decimal.Decimal

	RateSource string
}

// NormalizedName returns the lookup key form of the employee's name.
func (p PayRecord) NormalizedName() string {
	return NormalizeName(p.Name)
}

package payroll

import "github.com/dvloznov/backoffice/internal/sheet"

// Canonical column names after synonym mapping.
const (
	ColID                  = "ID"
	ColName                = "Name"
	ColJobDescription      = "Job Description"
	ColRate                = "Rate"
	ColHours               = "Hours"
	ColBasePay             = "Base Pay"
	ColDriverReimbursement = "Driver Reim."
	ColCCTips              = "CC Tips"
	ColCashTips            = "Cash Tips"
	ColOtherTips           = "Other Tips"
	ColTotalPay            = "Total Pay"
)

// HeaderKeywords must all appear in the header row.
var HeaderKeywords = []string{ColID, ColName, ColBasePay, ColTotalPay}

// HeaderWindow is how many leading rows are searched for the header.
const HeaderWindow = 20

// Synonyms maps the export's header spellings, after whitespace
// normalization, onto the canonical names.
var Synonyms = map[string]string{
	"Job Desc":       ColJobDescription,
	"Driver Reim":    ColDriverReimbursement,
	"CC/ Other Tips": ColCCTips,
	"CC/Other Tips":  ColCCTips,
	"Base Pay":       ColBasePay,
	"Total Pay":      ColTotalPay,
}

// TableOptions is the sheet configuration for payroll exports.
func TableOptions() sheet.Options {
	return sheet.Options{Synonyms: Synonyms}
}

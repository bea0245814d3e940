package categorize

const (
	// GenericOutflow is assigned to debits no earlier stage claimed.
	GenericOutflow = "Banking - Debit Transaction"
	// CreditFallback is assigned to credits when generation fails.
	CreditFallback = "Revenue - Miscellaneous"

	revenuePrefix = "Revenue"
)

// Vocabulary is the category list offered to the generator.
var Vocabulary = []string{
	"Revenue - Delivery - Grubhub",
	"Revenue - Delivery - UberEats",
	"Revenue - Delivery - DoorDash",
	"Revenue - POS - Credit Card",
	"Revenue - Gaming - Slots",
	"Revenue - General - In-Store",
	"Revenue - Credit Card Reimbursement",
	"Revenue - Miscellaneous",
	"Payroll - ADP - Salaried",
	"Payroll - Manual Check - Hourly",
	"Cost of Goods Sold - Food Vendor - Sysco",
	"Cost of Goods Sold - Packaging - Greco",
	"Cost of Goods Sold - Beverages",
	"Cost of Goods Sold - Alcohol",
	"Facilities - Rent - Real Estate",
	"Utilities - Electric - Ameren",
	"Utilities - Gas Service",
	"Utilities - Water - American Water",
	"Facilities - Waste Disposal - Contracted",
	"Bank Fees - ATM Withdrawal",
	"Bank Fees - Miscellaneous - Service Charge",
	"Bank Fees - Miscellaneous",
	"Banking - Returned Payment - NSF",
	"Banking - Inter-Account Transfer",
	"Banking - Debit Transaction",
	"Banking - Loan Payment - EBF",
	"Marketing - Digital - Facebook Ads",
	"Marketing - Digital - General",
	"Marketing - Print - Graphics Vendor",
	"Marketing - Print - Materials",
	"Merchant Fees - Rewards Network",
	"Merchant Fees - Shift4",
	"Merchant Fees - Nexus",
	"Merchant Fees - EBF Holdings",
	"Tax - State Withholding Payment",
	"Insurance - General Liability",
	"Fuel - Travel Expenses",
	"Corporate Allocation - Overhead G&A",
}

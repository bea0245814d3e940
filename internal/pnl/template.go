package pnl

// Kind is the type of a statement line.
type Kind int

const (
	Header Kind = iota
	Value
	Formula
)

// Line is one row of the statement template. Value lines sum Categories;
// Formula lines reference other lines as {key}, which becomes that line's
// worksheet row number.
type Line struct {
	Key        string
	Label      string
	Kind       Kind
	Categories []string
	Formula    string
	Expense    bool
	Bold       bool
	Indent     int
}

// Template is an ordered list of lines.
type Template []Line

func header(label string) Line {
	return Line{Label: label, Kind: Header, Bold: true}
}

func income(key, label string, categories ...string) Line {
	return Line{Key: key, Label: label, Kind: Value, Categories: categories, Indent: 1}
}

func expense(key, label string, categories ...string) Line {
	return Line{Key: key, Label: label, Kind: Value, Categories: categories, Expense: true, Indent: 1}
}

// single is an expense line named after its only category.
func single(key, category string) Line {
	return expense(key, category, category)
}

func formula(key, label, f string, bold bool) Line {
	return Line{Key: key, Label: label, Kind: Formula, Formula: f, Bold: bold}
}

// DefaultTemplate is the restaurant's profit and loss layout.
func DefaultTemplate() Template {
	return Template{
		header("Revenues"),
		income("cash_sales", "Cash sales", "Revenue - General - In-Store"),
		income("credit_sales", "Credit sales",
			"Revenue - POS - Credit Card",
			"Revenue - Delivery - Grubhub",
			"Revenue - Delivery - UberEats",
			"Revenue - Delivery - DoorDash",
			"Revenue - Gaming - Slots",
			"Revenue - Credit Card Reimbursement",
		),
		formula("total_revenue", "Total Revenue", "SUM(B{cash_sales}:B{credit_sales})", false),

		header("Cost of goods sold"),
		expense("cogs", "Cost of goods sold",
			"Cost of Goods Sold - Food Vendor - Sysco",
			"Cost of Goods Sold - Packaging - Greco",
			"Cost of Goods Sold - Beverages",
			"Cost of Goods Sold - Alcohol",
			"COGS - Beverage Vendor - Breakthru",
			"COGS - Food Vendor - Fivestar",
			"COGS - CO2 Supplier - NuCO2",
			"COGS - CO2 Vendor - NuCO2",
			"COGS - Beverage Vendor - Koerner",
			"COGS - Alcohol Vendor - Southern Glazer",
			"COGS - Beverage Vendor - Stokes",
			"COGS - Supplies - Webstaurant Store",
		),
		formula("gross_profit", "Gross profit", "B{total_revenue}-B{cogs}", true),

		header("Operating expenses"),
		expense("salaries", "Salaries", "Payroll - Manual Check - Hourly", "Payroll - ADP - Salaried"),
		expense("advertising", "Advertising",
			"Marketing - Digital - Facebook Ads",
			"Marketing - Digital - General",
			"Marketing - Print - Graphics Vendor",
			"Marketing - Print - Materials",
			"Marketing - Social Media - Social Page Solutions",
			"Marketing - Call Tracking - CallForce",
		),
		expense("office_rent", "Office rent", "Facilities - Rent - Real Estate"),
		expense("utilities", "Utilities",
			"Utilities - Electric - Ameren",
			"Utilities - Gas Service",
			"Utilities - Water - American Water",
		),
		expense("office_supplies", "Office Supplies"),
		expense("depreciation", "Depreciation"),
		single("fees_rewards_network", "Merchant Fees - Rewards Network"),
		single("fees_shift4", "Merchant Fees - Shift4"),
		single("fees_nexus", "Merchant Fees - Nexus"),
		single("fees_atm", "Bank Fees - ATM Withdrawal"),
		expense("fees_service_charge", "Bank Fees - Misc. Service Charge",
			"Bank Fees - Miscellaneous - Service Charge",
			"Bank Fees - Miscellaneous",
			"Bank Fees - Miscellaneous - ACH Transfer",
			"Bank Fees - Stop Payment",
			"Banking - Returned Payment - Stop Payment",
		),
		single("bookkeeping", "Accounting - Bookkeeping Services"),
		single("pos_hardware", "Technology - POS Hardware - Ziosk"),
		single("pos_software", "Technology - POS Software - Arrow"),
		expense("loyalty", "Technology - Loyalty Platform - Paytronix",
			"Technology - Loyalty Platform - Paytronix",
			"Technology - Loyalty Program - Paytronix",
		),
		single("freight", "Shipping - Freight - Beelman"),
		single("cleaning", "Janitorial - Cleaning Services"),
		single("sanitation", "Janitorial - Sanitation Vendor - PHS"),
		single("insurance", "Insurance - General Liability"),
		single("fuel", "Fuel - Travel Expenses"),
		single("corporate_allocation", "Corporate Allocation - Overhead G&A"),
		single("waste_lrs", "Facilities - Waste Disposal - LRS"),
		single("staff_food", "Meals & Entertainment - Staff Food"),
		single("promotional", "Promotional Supplies - Graduation Merchandise"),
		single("banking_debit", "Banking - Debit Transaction"),
		formula("total_opex", "Total operating expenses", "SUM(B{salaries}:B{banking_debit})", false),
		formula("operating_profit", "Operating profit", "B{gross_profit}-B{total_opex}", true),

		header("Other Income/Expenses"),
		income("interest_income", "Interest Income"),
		expense("interest_expenses", "Interest expenses"),
		single("ebf_loan", "Banking - Loan Payment - EBF"),
		formula("net_income_before_tax", "Net Income before Tax",
			"B{operating_profit}+B{interest_income}-B{interest_expenses}-B{ebf_loan}", true),
		expense("income_tax", "Income tax expenses", "Tax - State Withholding Payment"),
		formula("net_income_after_tax", "Net Income after Tax", "B{net_income_before_tax}-B{income_tax}", true),
	}
}

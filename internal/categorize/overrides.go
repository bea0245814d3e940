package categorize

// DefaultOverrides is the vendor table for the restaurant's bank accounts.
// Specific vendor strings come before generic keywords such as "fee" or
// "sale"; reordering changes results.
func DefaultOverrides() []Rule {
	return []Rule{
		Contains("Banking - Loan Payment - EBF", "ebf holdings"),
		ContainsOnCredit("Revenue - Credit Card Reimbursement", "rewards network settlement"),
		Contains("Merchant Fees - Rewards Network", "rewards network"),
		Contains("COGS - Beverage Vendor - Breakthru", "breakthru bevera"),
		Contains("Facilities - Waste Disposal - LRS", "lrs sanitation"),
		Contains("Accounting - Bookkeeping Services", "accurate account"),
		Contains("COGS - Food Vendor - Fivestar", "fivestar coop"),
		Contains("Technology - POS Hardware - Ziosk", "ziosk llc"),
		Contains("Tax - State Withholding Payment", "state of illinois il dept of revenue", "il dept of revenu"),
		Contains("Merchant Fees - Nexus", "nexus payments"),
		Contains("Shipping - Freight - Beelman", "beelman logistics"),
		Contains("Marketing - Call Tracking - CallForce", "call force"),
		Contains("COGS - Alcohol Vendor - Southern Glazer", "southern glazer"),
		Contains("Technology - Loyalty Program - Paytronix", "paytronix"),
		Contains("Janitorial - Cleaning Services", "clean ar"),
		Contains("Technology - POS Software - Arrow", "arrow pos"),
		Contains("Facilities - Security - ADT", "adt security"),
		Contains("Marketing - Social Media - Social Page Solutions", "social page"),
		Contains("COGS - CO2 Vendor - NuCO2", "nuco2"),
		Contains("COGS - Beverage Vendor - Koerner", "koerner distribut"),
		Contains("Janitorial - Sanitation Vendor - PHS", "phs enterprises"),
		Contains("Banking - Returned Payment - Stop Payment", "stop payment fee"),
		Contains("Fuel - Travel Expenses", "pos deb card# 1567"),
		Contains("Corporate Allocation - Overhead G&A", "pbg - g&a"),
		Contains("COGS - Beverage Vendor - Stokes", "stokes distribut"),
		Contains("Banking - Automated Clearing House (ACH) Transfer", "eft ach account"),
		Contains("Bank Fees - ATM Withdrawal", "atm w/d"),
		Contains("COGS - Supplies - Webstaurant Store", "webstaurant"),
		Contains("Janitorial - Sanitation Supplies - AutoChlor", "auto chlor"),
		Contains("Banking - Returned Payment - NSF", "repeat return", "od return item credit"),
		Contains("Maintenance - Hardware - Pace True Value", "pace true value"),
		Contains("Promotional Supplies - Graduation Merchandise", "herff jones"),
		Contains("Meals & Entertainment - Staff Food", "tacos el manantial"),

		// A debit mentioning a sale or deposit is never revenue.
		ContainsOnDebit(GenericOutflow, "sale", "deposit"),

		Contains("Cost of Goods Sold - Alcohol", "robert chick", "fritz", "southern"),
		HasCheckNumber("Payroll - Manual Check - Hourly"),

		Contains("Revenue - Gaming - Slots", "prairie state", "prairiestategami vgtpayment"),
		Signed("Revenue - POS - Credit Card", "Merchant Fees - Shift4", "shift4"),
		Contains("Revenue - Delivery - Grubhub", "grubhub"),
		Contains("Revenue - Delivery - UberEats", "ubereats", "uber usa"),
		Contains("Revenue - Delivery - DoorDash", "doordash"),
		Contains("Payroll - ADP - Salaried", "adp", "payroll"),
		Contains("Cost of Goods Sold - Food Vendor - Sysco", "sysco", "yzbizinc"),
		Contains("Cost of Goods Sold - Packaging - Greco", "greco"),
		Contains("Cost of Goods Sold - Beverages", "beverage"),
		Contains("Facilities - Rent - Real Estate", "rent", "lease"),
		Contains("Utilities - Electric - Ameren", "ameren"),
		Contains("Utilities - Gas Service", "gas"),
		Contains("Utilities - Water - American Water", "american water", "illinois-america"),
		Contains("Facilities - Waste Disposal - Contracted", "waste management"),
		Contains("Bank Fees - ATM Withdrawal", "w/d svc"),
		Contains("Marketing - Digital - Facebook Ads", "facebook"),
		Contains("Marketing - Digital - General", "marketing"),
		Contains("Marketing - Print - Graphics Vendor", "graphics"),
		Contains("Marketing - Print - Materials", "print"),
		Contains("Banking - Returned Payment - NSF", "od item return", "nsf", "return item fee"),
		Contains("Bank Fees - Miscellaneous - Service Charge", "service charge"),
		Contains("Bank Fees - Miscellaneous", "fee"),
		Contains("Banking - Inter-Account Transfer", "transfer"),
		Contains("Revenue - General - In-Store", "sale", "deposit"),
	}
}

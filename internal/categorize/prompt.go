package categorize

import (
	"strings"
)

// BuildPrompt asks the generator for exactly one category from vocabulary.
func BuildPrompt(in Input, vocabulary []string) string {
	kind := "Debit"
	if in.IsCredit() {
		kind = "Credit"
	}

	var b strings.Builder
	b.WriteString("You are an expert forensic accountant specializing in restaurant audits.\n")
	b.WriteString("Categorize the following bank transaction.\n\n")
	b.WriteString("Description: " + in.Description + "\n")
	b.WriteString("Amount: " + in.Amount.StringFixed(2) + " (" + kind + ")\n\n")

	b.WriteString("IMPORTANT RULES:\n")
	b.WriteString("1. Credits (money in) are usually revenue, refunds or reimbursements.\n")
	b.WriteString("2. Debits (money out) are NEVER revenue.\n")
	b.WriteString("3. Prefer the most specific category that fits the vendor.\n")
	b.WriteString("4. Use ONLY a category from the list below, spelled exactly.\n\n")

	b.WriteString("Categories:\n")
	for _, c := range vocabulary {
		b.WriteString("- " + c + "\n")
	}
	b.WriteString("\nReturn ONLY the exact accounting category string.")
	return b.String()
}

// Package statement reads bank statement exports into transactions.
package statement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dvloznov/backoffice/internal/categorize"
	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Standard column names.
const (
	ColDate        = "date"
	ColDescription = "description"
	ColAmount      = "amount"
	ColDebit       = "debit"
	ColCredit      = "credit"
)

// HeaderWindow is how many leading rows are searched for the header.
const HeaderWindow = 20

var columnSynonyms = map[string]string{
	"date":                   ColDate,
	"transactiondate":        ColDate,
	"postingdate":            ColDate,
	"processeddate":          ColDate,
	"description":            ColDescription,
	"transactiondescription": ColDescription,
	"details":                ColDescription,
	"memo":                   ColDescription,
	"amount":                 ColAmount,
	"debit":                  ColDebit,
	"withdrawal":             ColDebit,
	"credit":                 ColCredit,
	"deposit":                ColCredit,
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// StandardizeColumn lowercases name, strips everything but letters and
// digits, and maps known bank spellings onto the standard names. Unknown
// names come back lowercased.
func StandardizeColumn(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if std, ok := columnSynonyms[nonAlnum.ReplaceAllString(lower, "")]; ok {
		return std
	}
	return lower
}

func looksLikeHeader(cells []string) bool {
	have := map[string]bool{}
	for _, c := range cells {
		have[StandardizeColumn(c)] = true
	}
	return have[ColDate] && have[ColDescription] && (have[ColAmount] || have[ColDebit] || have[ColCredit])
}

// Parse reads a csv or xlsx statement.
func Parse(filename string, data []byte, log zerolog.Logger) ([]domain.Transaction, error) {
	grid, err := sheet.Read(filename, data)
	if err != nil {
		return nil, fmt.Errorf("statement.Parse: reading %s: %w", filename, err)
	}
	return ParseGrid(grid, log)
}

// ParseGrid converts statement rows into signed transactions. Rows with an
// unreadable date are dropped and logged. An unreadable amount is logged and
// read as zero.
func ParseGrid(grid sheet.Grid, log zerolog.Logger) ([]domain.Transaction, error) {
	headerRow, err := sheet.LocateHeaderFunc(grid, HeaderWindow, looksLikeHeader)
	if err != nil {
		return nil, fmt.Errorf("statement.ParseGrid: %w", err)
	}
	table, err := sheet.NewTable(grid, headerRow, sheet.Options{Normalize: StandardizeColumn})
	if err != nil {
		return nil, fmt.Errorf("statement.ParseGrid: %w", err)
	}
	if err := table.Require(ColDate, ColDescription); err != nil {
		return nil, fmt.Errorf("statement.ParseGrid: %w", err)
	}
	hasDebit, hasCredit, hasAmount := table.Has(ColDebit), table.Has(ColCredit), table.Has(ColAmount)

	var txs []domain.Transaction
	dropped := 0
	for _, row := range table.Rows {
		if row.Blank() {
			continue
		}
		desc := row.Get(ColDescription)
		if desc == "" {
			continue
		}
		date, err := sheet.ParseDate(row.Get(ColDate))
		if err != nil {
			dropped++
			log.Debug().Int("row", row.Index+1).Str("date", row.Get(ColDate)).Msg("dropping statement row with unreadable date")
			continue
		}

		money := func(col string) decimal.Decimal {
			d, _, err := row.Decimal(col)
			if err != nil {
				log.Warn().Err(err).Int("row", row.Index+1).Msg("unreadable amount, counted as zero")
			}
			return d
		}

		var amount decimal.Decimal
		switch {
		case hasDebit && hasCredit:
			amount = money(ColCredit).Sub(money(ColDebit))
		case hasDebit && !hasAmount:
			amount = money(ColDebit).Neg()
		case hasCredit && !hasAmount:
			amount = money(ColCredit)
		default:
			amount = money(ColAmount)
		}

		txs = append(txs, domain.Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			CheckNumber: categorize.CheckNumber(desc),
		})
	}

	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Msg("statement rows dropped for unreadable dates")
	}
	return txs, nil
}

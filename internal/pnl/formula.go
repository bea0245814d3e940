package pnl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)
	termPattern        = regexp.MustCompile(`^(?:SUM\(B(\d+):B(\d+)\)|B(\d+))`)
)

// substitute replaces {key} with the key's row number.
func substitute(f string, rows map[string]int) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(f, func(m string) string {
		key := m[1 : len(m)-1]
		row, ok := rows[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return strconv.Itoa(row)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unknown line keys %s in %q", strings.Join(missing, ", "), f)
	}
	return out, nil
}

// evaluate computes a substituted formula. Only SUM(Bx:By), Bn, + and -
// are understood; values holds the amount of every row computed so far.
func evaluate(expr string, values map[int]decimal.Decimal) (decimal.Decimal, error) {
	s := strings.ReplaceAll(expr, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty formula")
	}

	cell := func(text string) (decimal.Decimal, error) {
		row, _ := strconv.Atoi(text)
		v, ok := values[row]
		if !ok {
			return decimal.Zero, fmt.Errorf("row %d has no value yet", row)
		}
		return v, nil
	}

	total := decimal.Zero
	negative := false
	for {
		m := termPattern.FindStringSubmatch(s)
		if m == nil {
			return decimal.Zero, fmt.Errorf("unsupported expression at %q", s)
		}

		var term decimal.Decimal
		if m[3] != "" {
			v, err := cell(m[3])
			if err != nil {
				return decimal.Zero, err
			}
			term = v
		} else {
			from, _ := strconv.Atoi(m[1])
			to, _ := strconv.Atoi(m[2])
			if from > to {
				from, to = to, from
			}
			for r := from; r <= to; r++ {
				v, err := cell(strconv.Itoa(r))
				if err != nil {
					return decimal.Zero, err
				}
				term = term.Add(v)
			}
		}
		if negative {
			total = total.Sub(term)
		} else {
			total = total.Add(term)
		}

		s = s[len(m[0]):]
		if s == "" {
			return total, nil
		}
		switch s[0] {
		case '+':
			negative = false
		case '-':
			negative = true
		default:
			return decimal.Zero, fmt.Errorf("unexpected %q", s[:1])
		}
		s = s[1:]
	}
}

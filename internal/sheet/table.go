package sheet

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrColumnMissing is returned by Table.Require when an expected column is
// absent after normalization and synonym mapping.
var ErrColumnMissing = errors.New("required column missing")

// Options controls how header cells become column names.
type Options struct {
	// Synonyms maps a normalized header (case-folded when FoldCase is set)
	// onto the canonical column name.
	Synonyms map[string]string
	// FoldCase lowercases headers before the synonym lookup.
	FoldCase bool
	// Normalize replaces the default header normalization.
	Normalize func(string) string
}

// Table is a header row plus the data rows beneath it.
type Table struct {
	HeaderRow int
	Columns   []string
	Rows      []Row

	index map[string]int
}

// Row is one data row of a Table. Index is the row's position in the
// source grid.
type Row struct {
	Index int
	cells []string
	table *Table
}

// NormalizeColumn turns embedded newlines into spaces, collapses runs of
// whitespace and trims the result.
func NormalizeColumn(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NewTable builds a table from the grid using headerRow as the header.
func NewTable(grid Grid, headerRow int, opts Options) (*Table, error) {
	if headerRow < 0 || headerRow >= len(grid) {
		return nil, fmt.Errorf("sheet.NewTable: header row %d outside grid of %d rows", headerRow, len(grid))
	}

	normalize := opts.Normalize
	if normalize == nil {
		normalize = NormalizeColumn
	}

	t := &Table{HeaderRow: headerRow, index: make(map[string]int)}
	for i, raw := range grid[headerRow] {
		name := normalize(raw)
		if opts.FoldCase {
			name = strings.ToLower(name)
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if canonical, ok := opts.Synonyms[name]; ok {
			name = canonical
		}
		t.Columns = append(t.Columns, name)
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}

	for i := headerRow + 1; i < len(grid); i++ {
		t.Rows = append(t.Rows, Row{Index: i, cells: grid[i], table: t})
	}
	return t, nil
}

// Has reports whether the table has the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Require fails with ErrColumnMissing naming every absent column.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s (have %s)", ErrColumnMissing, strings.Join(missing, ", "), strings.Join(t.Columns, ", "))
	}
	return nil
}

// Get returns the trimmed cell under col, or "" when the column or cell is
// absent.
func (r Row) Get(col string) string {
	i, ok := r.table.index[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// Blank reports whether every cell in the row is empty.
func (r Row) Blank() bool {
	return NonEmptyCount(r.cells) == 0
}

// Decimal parses the cell under col as a money-like number. ok is false for
// blank cells. A non-numeric value is an error.
func (r Row) Decimal(col string) (d decimal.Decimal, ok bool, err error) {
	d, ok, err = ParseDecimal(r.Get(col))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("column %q: %w", col, err)
	}
	return d, ok, nil
}

// DecimalOrZero is Decimal with blanks and unparseable values read as zero,
// for reports where coercion errors are not worth surfacing.
func (r Row) DecimalOrZero(col string) decimal.Decimal {
	d, _, err := r.Decimal(col)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDecimal accepts "1234.5", "$1,234.50", "(12.00)" and "45%". Empty
// strings and placeholders such as "-" or "nan" yield ok=false.
func ParseDecimal(s string) (decimal.Decimal, bool, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "nan", "n/a":
		return decimal.Zero, false, nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "", "%", "").Replace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("not a number: %q", s)
	}
	if negative {
		d = d.Neg()
	}
	return d, true, nil
}

package sheet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHeaderNotFound means no row inside the lookahead window looked like a
// header. Every downstream column lookup depends on the header, so callers
// must treat this as fatal for the file.
var ErrHeaderNotFound = errors.New("header row not found")

// LocateHeader returns the index of the first row, among the first window
// rows, whose trimmed cell values include every keyword.
func LocateHeader(grid Grid, keywords []string, window int) (int, error) {
	idx, err := LocateHeaderFunc(grid, window, func(cells []string) bool {
		present := make(map[string]struct{}, len(cells))
		for _, c := range cells {
			present[strings.TrimSpace(c)] = struct{}{}
		}
		for _, kw := range keywords {
			if _, ok := present[kw]; !ok {
				return false
			}
		}
		return true
	})
	if err != nil {
		return -1, fmt.Errorf("%w: keywords %q within first %d rows", ErrHeaderNotFound, keywords, window)
	}
	return idx, nil
}

// LocateHeaderFunc returns the first row index, among the first window rows,
// for which match returns true.
func LocateHeaderFunc(grid Grid, window int, match func(cells []string) bool) (int, error) {
	limit := window
	if limit <= 0 || limit > len(grid) {
		limit = len(grid)
	}
	for i := 0; i < limit; i++ {
		if match(grid[i]) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w within first %d rows", ErrHeaderNotFound, limit)
}

// NonEmptyCount returns how many cells in the row hold something other than
// whitespace.
func NonEmptyCount(cells []string) int {
	n := 0
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

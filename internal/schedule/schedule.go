// Package schedule parses the weekly employee schedule workbook.
package schedule

import (
	"fmt"
	"strings"

	"github.com/dvloznov/backoffice/internal/sheet"
)

// dayNames maps the workbook's weekday headings onto short day names.
var dayNames = map[string]string{
	"MON":   "Mon",
	"TUES":  "Tue",
	"WED":   "Wed",
	"THURS": "Thu",
	"FRI":   "Fri",
	"SAT":   "Sat",
	"SUN":   "Sun",
}

// MinDayHeadings is how many weekday headings identify the header row.
const MinDayHeadings = 3

// banner rows carry titles rather than employees.
var banners = []string{"WEEK OF", "ROSATI'S"}

// Shift is one employee's entry for one day, such as "4-CL" or "OFF".
type Shift struct {
	Section  string
	Employee string
	Day      string
	Value    string
}

// Schedule is a parsed week.
type Schedule struct {
	Days      []string
	Employees []string
	Shifts    []Shift
}

// Parse reads a schedule workbook.
func Parse(filename string, data []byte) (*Schedule, error) {
	grid, err := sheet.Read(filename, data)
	if err != nil {
		return nil, fmt.Errorf("schedule.Parse: reading %s: %w", filename, err)
	}
	return ParseGrid(grid)
}

func isSection(s string) bool {
	return strings.HasSuffix(s, ":") && !strings.Contains(s, " ")
}

// ParseGrid finds the weekday header and reads employee rows beneath it.
// Rows such as "SERVERS:" start a new section.
func ParseGrid(grid sheet.Grid) (*Schedule, error) {
	headerRow, err := sheet.LocateHeaderFunc(grid, 0, func(cells []string) bool {
		n := 0
		for _, c := range cells {
			if _, ok := dayNames[strings.ToUpper(strings.TrimSpace(c))]; ok {
				n++
			}
		}
		return n >= MinDayHeadings
	})
	if err != nil {
		return nil, fmt.Errorf("schedule.ParseGrid: %w", err)
	}

	s := &Schedule{}
	dayCols := map[int]string{}
	for col, c := range grid[headerRow] {
		if col == 0 {
			continue
		}
		if day, ok := dayNames[strings.ToUpper(strings.TrimSpace(c))]; ok {
			dayCols[col] = day
			s.Days = append(s.Days, day)
		}
	}

	section := ""
	for r := headerRow + 1; r < len(grid); r++ {
		name := strings.TrimSpace(grid.Cell(r, 0))
		if name == "" {
			continue
		}
		upper := strings.ToUpper(name)
		if isSection(upper) {
			section = strings.TrimSuffix(upper, ":")
			continue
		}
		if containsAny(upper, banners) {
			continue
		}

		s.Employees = append(s.Employees, name)
		for col := 1; col < len(grid[r]); col++ {
			day, ok := dayCols[col]
			if !ok {
				continue
			}
			if v := strings.TrimSpace(grid.Cell(r, col)); v != "" {
				s.Shifts = append(s.Shifts, Shift{Section: section, Employee: name, Day: day, Value: v})
			}
		}
	}
	return s, nil
}

// ForEmployee returns the employee's shifts in day order.
func (s *Schedule) ForEmployee(name string) []Shift {
	var out []Shift
	for _, sh := range s.Shifts {
		if strings.EqualFold(sh.Employee, name) {
			out = append(out, sh)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

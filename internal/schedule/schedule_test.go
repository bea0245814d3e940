package schedule

import (
	"errors"
	"testing"

	"github.com/dvloznov/backoffice/internal/sheet"
	"github.com/google/go-cmp/cmp"
)

func TestParseGrid(t *testing.T) {
	grid := sheet.Grid{
		{"ROSATI'S EMPLOYEE SCHEDULE"},
		{"WEEK OF 3/4"},
		{"", "MON", "TUES", "WED", "THURS", "FRI", "SAT", "SUN"},
		{"SERVERS:"},
		{"Jane", "4-CL", "", "OFF", "", "", "", ""},
		{"SUPPORT:"},
		{"Bob", "", "10-4"},
		{""},
	}

	s, err := ParseGrid(grid)
	if err != nil {
		t.Fatalf("ParseGrid() error = %v", err)
	}

	if diff := cmp.Diff([]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, s.Days); diff != "" {
		t.Errorf("Days mismatch (-want +got):\n%s", diff)
	}
	want := []Shift{
		{Section: "SERVERS", Employee: "Jane", Day: "Mon", Value: "4-CL"},
		{Section: "SERVERS", Employee: "Jane", Day: "Wed", Value: "OFF"},
		{Section: "SUPPORT", Employee: "Bob", Day: "Tue", Value: "10-4"},
	}
	if diff := cmp.Diff(want, s.Shifts); diff != "" {
		t.Errorf("Shifts mismatch (-want +got):\n%s", diff)
	}
	if got := len(s.ForEmployee("jane")); got != 2 {
		t.Errorf("ForEmployee(jane) = %d shifts, want 2", got)
	}
}

func TestParseGrid_NoHeader(t *testing.T) {
	_, err := ParseGrid(sheet.Grid{{"", "MON", "TUES"}})
	if !errors.Is(err, sheet.ErrHeaderNotFound) {
		t.Errorf("ParseGrid() error = %v, want ErrHeaderNotFound", err)
	}
}

package ratestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOpen_MissingFileUsesSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")

	s, err := Open(path, DefaultSeed(), Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !s.Dirty() {
		t.Error("Dirty() = false, want true for a seeded store")
	}
	if rate, ok := s.Lookup(74, ""); !ok || !rate.Equal(dec("10.5")) {
		t.Errorf("Lookup(74) = %s, %v, want 10.5", rate, ok)
	}
	if rate, ok := s.Lookup(0, "Krish  Patel"); !ok || !rate.Equal(dec("10.40")) {
		t.Errorf("Lookup(krish patel) = %s, %v, want 10.40", rate, ok)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file written before Flush: stat err = %v", err)
	}

	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if s.Dirty() {
		t.Error("Dirty() = true after Flush")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file missing after Flush: %v", err)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rates.json")

	s, err := Open(path, Seed{}, Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	mustSet(t, s.SetID(44, dec("15")))
	mustSet(t, s.SetID(7, dec("12.25")))
	mustSet(t, s.SetName("Doe,  Jane", dec("9")))
	mustSet(t, s.SetName("jayesh", dec("0")))
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	reloaded, err := Open(path, DefaultSeed(), Options{})
	if err != nil {
		t.Fatalf("Open() reload error = %v", err)
	}
	if reloaded.Dirty() {
		t.Error("reloaded store should not be dirty")
	}

	want := s.Entries()
	got := reloaded.Entries()
	if len(got) != len(want) {
		t.Fatalf("Entries() len = %d, want %d (%v)", len(got), len(want), got)
	}
	for k, v := range want {
		if !got[k].Equal(v) {
			t.Errorf("Entries()[%q] = %s, want %s", k, got[k], v)
		}
	}

	if _, ok := reloaded.byID[44]; !ok {
		t.Error("numeric key 44 should reload as an integer ID")
	}
	if _, ok := reloaded.byName["doe jane"]; !ok {
		t.Error("name key should reload as a normalized name")
	}
}

func TestStore_FileIsPlainJSONNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	s, err := Open(path, Seed{}, Options{AutoFlush: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.SetName("Sonu Mitha", dec("15")); err != nil {
		t.Fatalf("SetName() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("AutoFlush did not write the file: %v", err)
	}
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("file is not a JSON object of numbers: %v\n%s", err, data)
	}
	if raw["sonu mitha"] != 15 {
		t.Errorf("raw[sonu mitha] = %v, want 15", raw["sonu mitha"])
	}
}

func TestStore_LookupPrefersID(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "rates.json"), Seed{
		ByID:   map[int]decimal.Decimal{12: dec("11")},
		ByName: map[string]decimal.Decimal{"jane doe": dec("20")},
	}, Options{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	tests := []struct {
		name   string
		id     int
		person string
		want   string
		wantOK bool
	}{
		{"id hit wins over name", 12, "Jane Doe", "11", true},
		{"falls back to name", 99, "JANE DOE", "20", true},
		{"zero id uses name", 0, "jane, doe", "20", true},
		{"miss", 99, "someone else", "0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Lookup(tt.id, tt.person)
			if ok != tt.wantOK || !got.Equal(dec(tt.want)) {
				t.Errorf("Lookup(%d, %q) = %s, %v, want %s, %v", tt.id, tt.person, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, DefaultSeed(), Options{}); err == nil {
		t.Error("Open() expected error for corrupt file")
	}
}

func TestSetName_Empty(t *testing.T) {
	s, _ := Open(filepath.Join(t.TempDir(), "rates.json"), Seed{}, Options{})
	if err := s.SetName(" , ", dec("9")); err == nil {
		t.Error("SetName() expected error for empty name")
	}
}

func mustSet(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("set error = %v", err)
	}
}

package ratestore

import "github.com/shopspring/decimal"

// DefaultSeed returns the rates a fresh store starts with.
func DefaultSeed() Seed {
	byID := map[int]string{
		44: "15", 130: "9", 71: "10", 74: "10.5", 136: "9", 117: "15",
		110: "17", 79: "15", 123: "13", 112: "23", 135: "9", 12: "11",
		15: "15", 140: "9", 11: "15", 141: "9", 143: "9", 144: "9",
		145: "9", 142: "9", 146: "9", 147: "9",
	}
	byName := map[string]string{
		"kush patel":               "0",
		"krish patel":              "10.40",
		"sonu mitha":               "15",
		"a angie":                  "0",
		"delivery delivery driver": "0",
		"jayesh":                   "0",
	}

	seed := Seed{
		ByID:   make(map[int]decimal.Decimal, len(byID)),
		ByName: make(map[string]decimal.Decimal, len(byName)),
	}
	for id, rate := range byID {
		seed.ByID[id] = decimal.RequireFromString(rate)
	}
	for name, rate := range byName {
		seed.ByName[name] = decimal.RequireFromString(rate)
	}
	return seed
}

package domain

import "strings"

// NormalizeName lowercases a name, strips commas and collapses whitespace,
// so "Patel,  Kush" and "patel kush" compare equal.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.ReplaceAll(name, ",", ""))
	return strings.Join(strings.Fields(s), " ")
}

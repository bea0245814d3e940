package categorize

import "regexp"

var checkNumberPattern = regexp.MustCompile(`(?i)check(?:\s*#)?\s*(\d+)`)

// CheckNumber extracts a check number such as "CHECK # 1042" from a
// description. It returns "" when none is present.
func CheckNumber(description string) string {
	m := checkNumberPattern.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return m[1]
}

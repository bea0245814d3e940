package categorize

import "testing"

func TestRule_Match(t *testing.T) {
	tests := []struct {
		name   string
		rule   Rule
		input  Input
		want   string
		wantOK bool
	}{
		{"contains", Contains("X", "acme"), txn("ACME CORP", -1), "X", true},
		{"contains miss", Contains("X", "acme"), txn("ZENITH", -1), "", false},
		{"credit only on debit", ContainsOnCredit("X", "acme"), txn("ACME", -1), "", false},
		{"credit only on credit", ContainsOnCredit("X", "acme"), txn("ACME", 1), "X", true},
		{"debit only on credit", ContainsOnDebit("X", "acme"), txn("ACME", 1), "", false},
		{"zero is a debit", ContainsOnDebit("X", "acme"), txn("ACME", 0), "X", true},
		{"signed credit", Signed("C", "D", "acme"), txn("ACME", 1), "C", true},
		{"signed debit", Signed("C", "D", "acme"), txn("ACME", -1), "D", true},
		{"check without number", HasCheckNumber("X"), txn("ACME", -1), "", false},
		{"check with number", HasCheckNumber("X"), Input{Description: "ACME", CheckNumber: "12"}, "X", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.rule.Match(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Match() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDefaultOverrides_VendorsComeBeforeGenericKeywords(t *testing.T) {
	index := map[string]int{}
	for i, r := range DefaultOverrides() {
		for _, s := range r.Substrings {
			if _, seen := index[s]; !seen {
				index[s] = i
			}
		}
	}
	pairs := [][2]string{
		{"rewards network settlement", "rewards network"},
		{"southern glazer", "southern"},
		{"stop payment fee", "fee"},
		{"atm w/d", "sale"},
		{"shift4", "fee"},
	}
	for _, p := range pairs {
		if index[p[0]] >= index[p[1]] {
			t.Errorf("%q at %d must precede %q at %d", p[0], index[p[0]], p[1], index[p[1]])
		}
	}
}

func TestCheckNumber(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"CHECK # 1042", "1042"},
		{"Check 77", "77"},
		{"check#5", "5"},
		{"CHECKCARD PURCHASE", ""},
		{"GRUBHUB", ""},
	}
	for _, tt := range tests {
		if got := CheckNumber(tt.desc); got != tt.want {
			t.Errorf("CheckNumber(%q) = %q, want %q", tt.desc, got, tt.want)
		}
	}
}

package llm

import (
	"context"
	"errors"
	"testing"
)

func TestGenerateOr(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
		want string
	}{
		{
			name: "nil generator",
			gen:  nil,
			want: "fallback",
		},
		{
			name: "error",
			gen: &MockGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
				return "", errors.New("quota exceeded")
			}},
			want: "fallback",
		},
		{
			name: "blank response",
			gen: &MockGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
				return "  \n", nil
			}},
			want: "fallback",
		},
		{
			name: "success is trimmed",
			gen: &MockGenerator{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
				return "  Sales were up.\n", nil
			}},
			want: "Sales were up.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateOr(context.Background(), tt.gen, "prompt", "fallback"); got != tt.want {
				t.Errorf("GenerateOr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Revenue - Miscellaneous", "Revenue - Miscellaneous"},
		{"  \"Revenue - Gaming - Slots\"\n", "Revenue - Gaming - Slots"},
		{"```\nRevenue - POS - Credit Card\n```", "Revenue - POS - Credit Card"},
		{"```text\n'Utilities - Gas Service'\n```", "Utilities - Gas Service"},
	}

	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMockGenerator_RecordsPrompts(t *testing.T) {
	m := &MockGenerator{}
	_, _ = m.Generate(context.Background(), "one")
	_, _ = m.Generate(context.Background(), "two")

	if m.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", m.Calls())
	}
	if p := m.Prompts(); len(p) != 2 || p[1] != "two" {
		t.Errorf("Prompts() = %v", p)
	}
}

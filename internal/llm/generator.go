// Package llm wraps the text-generation service used for categorization and
// narrative analysis.
package llm

import (
	"context"
	"strings"

	"github.com/dvloznov/backoffice/internal/logger"
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateOr calls gen and returns fallback when gen is nil, fails, or
// returns only whitespace. Failures are logged, never returned.
func GenerateOr(ctx context.Context, gen Generator, prompt, fallback string) string {
	if gen == nil {
		return fallback
	}
	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("text generation failed, using fallback")
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return text
}

// CleanText strips Markdown code fences and surrounding quotes that models
// add despite being asked for a bare answer.
func CleanText(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	return strings.TrimSpace(s)
}

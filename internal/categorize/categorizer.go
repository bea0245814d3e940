// Package categorize assigns accounting categories to bank transactions
// through an ordered cascade of matchers with a generated fallback.
package categorize

import (
	"context"
	"strings"
	"time"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/llm"
	"github.com/dvloznov/backoffice/internal/rules"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// DefaultCacheTTL bounds how long a generated answer is reused.
const DefaultCacheTTL = 24 * time.Hour

// Result is a category and the stage that produced it.
type Result struct {
	Category string                `json:"category"`
	Source   domain.CategorySource `json:"source"`
}

// Options configures a Categorizer. Nil rule sets and a nil generator are
// allowed; the corresponding stages are skipped.
type Options struct {
	Overrides []Rule // nil selects DefaultOverrides
	Learned   *rules.RuleSet
	Journal   *rules.RuleSet
	Generator llm.Generator
	CacheTTL  time.Duration
	Logger    zerolog.Logger
}

type stage struct {
	matcher Matcher
	source  domain.CategorySource
}

// Categorizer runs the cascade. It is safe for concurrent use as long as
// the rule sets are.
type Categorizer struct {
	stages     []stage
	learned    *rules.RuleSet
	gen        llm.Generator
	memo       *cache.Cache
	vocabulary []string
	log        zerolog.Logger
}

// New builds the cascade: overrides, learned rules, journal rules, then the
// debit default. Unmatched credits go to the generator.
func New(opts Options) *Categorizer {
	overrides := opts.Overrides
	if overrides == nil {
		overrides = DefaultOverrides()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &Categorizer{
		stages: []stage{
			{NewOverrideMatcher(overrides), domain.SourceOverride},
			{NewRuleSetMatcher("learned", opts.Learned), domain.SourceLearned},
			{NewRuleSetMatcher("journal", opts.Journal), domain.SourceJournal},
			{DebitDefault{}, domain.SourceDebitDefault},
		},
		learned:    opts.Learned,
		gen:        opts.Generator,
		memo:       cache.New(ttl, 2*ttl),
		vocabulary: Vocabulary,
		log:        opts.Logger,
	}
}

// Categorize returns a category for in. It never fails: generator errors
// degrade to a fixed fallback by sign.
func (c *Categorizer) Categorize(ctx context.Context, in Input) Result {
	if in.CheckNumber == "" {
		in.CheckNumber = CheckNumber(in.Description)
	}

	for _, st := range c.stages {
		if category, ok := st.matcher.Match(in); ok {
			return Result{Category: category, Source: st.source}
		}
	}
	return c.generate(ctx, in)
}

func (c *Categorizer) generate(ctx context.Context, in Input) Result {
	credit := in.IsCredit()
	fallback := GenericOutflow
	if credit {
		fallback = CreditFallback
	}
	if c.gen == nil {
		return Result{Category: fallback, Source: domain.SourceFallback}
	}

	key := memoKey(in.Description, credit)
	if v, ok := c.memo.Get(key); ok {
		return Result{Category: v.(string), Source: domain.SourceGenerated}
	}

	text, err := c.gen.Generate(ctx, BuildPrompt(in, c.vocabulary))
	if err != nil {
		c.log.Warn().Err(err).Str("description", in.Description).Msg("category generation failed, using fallback")
		return Result{Category: fallback, Source: domain.SourceFallback}
	}
	category := llm.CleanText(text)
	if category == "" {
		c.log.Warn().Str("description", in.Description).Msg("empty generated category, using fallback")
		return Result{Category: fallback, Source: domain.SourceFallback}
	}
	if !credit && strings.HasPrefix(category, revenuePrefix) {
		c.log.Warn().
			Str("description", in.Description).
			Str("category", category).
			Msg("revenue category generated for a debit, resetting")
		category = GenericOutflow
	}

	c.memo.Set(key, category, cache.DefaultExpiration)

	if c.learned != nil {
		if added := c.learned.Learn(in.Description, category); len(added) > 0 {
			c.log.Debug().Strs("keywords", added).Str("category", category).Msg("learned keywords")
		}
	}
	return Result{Category: category, Source: domain.SourceGenerated}
}

// CategorizeAll fills Category, CategorySource and a missing CheckNumber on
// every transaction and returns how many came from each source.
func (c *Categorizer) CategorizeAll(ctx context.Context, txs []domain.Transaction) map[domain.CategorySource]int {
	counts := make(map[domain.CategorySource]int)
	for i := range txs {
		tx := &txs[i]
		if tx.CheckNumber == "" {
			tx.CheckNumber = CheckNumber(tx.Description)
		}
		res := c.Categorize(ctx, Input{
			Description: tx.Description,
			Amount:      tx.Amount,
			CheckNumber: tx.CheckNumber,
		})
		tx.Category = res.Category
		tx.CategorySource = res.Source
		counts[res.Source]++
	}
	c.log.Info().Int("transactions", len(txs)).Interface("sources", counts).Msg("categorized transactions")
	return counts
}

func memoKey(description string, credit bool) string {
	sign := "-"
	if credit {
		sign = "+"
	}
	return sign + strings.ToLower(strings.TrimSpace(description))
}

// Package rules persists keyword → category associations used by the
// transaction categorizer.
package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dvloznov/backoffice/internal/fileutil"
)

// RuleSet is an insertion-ordered map of lowercase keyword to category.
// Matching walks keywords in order, so the file order decides which rule
// wins when several keywords appear in one description.
type RuleSet struct {
	path string

	mu       sync.RWMutex
	keywords []string
	category map[string]string
	dirty    bool
}

// New returns an empty rule set that flushes to path.
func New(path string) *RuleSet {
	return &RuleSet{path: path, category: make(map[string]string)}
}

// Load reads the rule set at path. A missing file yields an empty set.
func Load(path string) (*RuleSet, error) {
	rs := New(path)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return rs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rules.Load: reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return rs, nil
	}
	if err := rs.decode(data); err != nil {
		return nil, fmt.Errorf("rules.Load: decoding %s: %w", path, err)
	}
	return rs, nil
}

// decode streams the JSON object so key order survives.
func (rs *RuleSet) decode(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %v", tok)
		}
		var category string
		if err := dec.Decode(&category); err != nil {
			return fmt.Errorf("value for %q: %w", key, err)
		}
		rs.put(strings.ToLower(strings.TrimSpace(key)), category)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func (rs *RuleSet) put(keyword, category string) {
	if keyword == "" {
		return
	}
	if _, exists := rs.category[keyword]; !exists {
		rs.keywords = append(rs.keywords, keyword)
	}
	rs.category[keyword] = category
}

// Match returns the category of the first keyword contained in the
// lowercased description.
func (rs *RuleSet) Match(description string) (category, keyword string, ok bool) {
	desc := strings.ToLower(description)

	rs.mu.RLock()
	defer rs.mu.RUnlock()
	for _, kw := range rs.keywords {
		if strings.Contains(desc, kw) {
			return rs.category[kw], kw, true
		}
	}
	return "", "", false
}

// Get returns the category stored for an exact keyword.
func (rs *RuleSet) Get(keyword string) (string, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	c, ok := rs.category[strings.ToLower(keyword)]
	return c, ok
}

// Learn extracts keywords from the description and maps each one not yet
// known to category. Existing mappings are never changed. It returns the
// keywords that were added.
func (rs *RuleSet) Learn(description, category string) []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var added []string
	for _, kw := range ExtractKeywords(description) {
		if _, exists := rs.category[kw]; exists {
			continue
		}
		rs.put(kw, category)
		added = append(added, kw)
	}
	if len(added) > 0 {
		rs.dirty = true
	}
	return added
}

// Set maps keyword to category, replacing any previous mapping. It is the
// manual-correction path; automatic learning goes through Learn.
func (rs *RuleSet) Set(keyword, category string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.put(strings.ToLower(strings.TrimSpace(keyword)), category)
	rs.dirty = true
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.keywords)
}

// Rule is one keyword → category pair.
type Rule struct {
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
}

// Rules returns the rules in match order.
func (rs *RuleSet) Rules() []Rule {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	out := make([]Rule, 0, len(rs.keywords))
	for _, kw := range rs.keywords {
		out = append(out, Rule{Keyword: kw, Category: rs.category[kw]})
	}
	return out
}

// Dirty reports whether there are unflushed changes.
func (rs *RuleSet) Dirty() bool {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return rs.dirty
}

// Flush rewrites the file, in match order, when there are unflushed changes.
func (rs *RuleSet) Flush() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.dirty {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, kw := range rs.keywords {
		k, _ := json.Marshal(kw)
		v, _ := json.Marshal(rs.category[kw])
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		buf.Write(k)
		buf.WriteString(": ")
		buf.Write(v)
	}
	buf.WriteString("\n}\n")

	if err := fileutil.WriteAtomic(rs.path, buf.Bytes()); err != nil {
		return fmt.Errorf("rules.Flush: %w", err)
	}
	rs.dirty = false
	return nil
}

// Package ratestore persists employee hourly rates keyed by numeric ID or
// by normalized name.
package ratestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dvloznov/backoffice/internal/domain"
	"github.com/dvloznov/backoffice/internal/fileutil"
	"github.com/shopspring/decimal"
)

// Seed is the initial content of a store whose file does not exist yet.
type Seed struct {
	ByID   map[int]decimal.Decimal
	ByName map[string]decimal.Decimal
}

// Options configures a Store.
type Options struct {
	// AutoFlush writes the file after every mutation instead of waiting for
	// an explicit Flush.
	AutoFlush bool
}

// Store maps employee identity to hourly rate. Mutations stay in memory
// until Flush. Safe for concurrent use within one process; the backing file
// assumes a single writer process.
type Store struct {
	path string
	opts Options

	mu     sync.RWMutex
	byID   map[int]decimal.Decimal
	byName map[string]decimal.Decimal
	dirty  bool
}

// Open loads the store at path. When the file does not exist the store
// starts from seed and is marked dirty so the first Flush creates it.
func Open(path string, seed Seed, opts Options) (*Store, error) {
	s := &Store{
		path:   path,
		opts:   opts,
		byID:   make(map[int]decimal.Decimal),
		byName: make(map[string]decimal.Decimal),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		for id, rate := range seed.ByID {
			s.byID[id] = rate
		}
		for name, rate := range seed.ByName {
			s.byName[domain.NormalizeName(name)] = rate
		}
		s.dirty = true
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ratestore.Open: reading %s: %w", path, err)
	}

	raw := map[string]decimal.Decimal{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ratestore.Open: decoding %s: %w", path, err)
	}
	for key, rate := range raw {
		if id, ok := parseID(key); ok {
			s.byID[id] = rate
			continue
		}
		s.byName[domain.NormalizeName(key)] = rate
	}
	return s, nil
}

// Lookup returns the rate for the employee, trying the numeric ID first and
// the normalized name second. A zero id skips the ID lookup.
func (s *Store) Lookup(id int, name string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id != 0 {
		if rate, ok := s.byID[id]; ok {
			return rate, true
		}
	}
	if rate, ok := s.byName[domain.NormalizeName(name)]; ok {
		return rate, true
	}
	return decimal.Zero, false
}

// SetID records a rate under a numeric employee ID.
func (s *Store) SetID(id int, rate decimal.Decimal) error {
	s.mu.Lock()
	s.byID[id] = rate
	s.dirty = true
	s.mu.Unlock()
	return s.maybeFlush()
}

// SetName records a rate under the normalized form of name.
func (s *Store) SetName(name string, rate decimal.Decimal) error {
	key := domain.NormalizeName(name)
	if key == "" {
		return fmt.Errorf("ratestore.SetName: empty name")
	}
	s.mu.Lock()
	s.byName[key] = rate
	s.dirty = true
	s.mu.Unlock()
	return s.maybeFlush()
}

// Entries returns a copy of the store as the string-keyed map written to
// disk.
func (s *Store) Entries() map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]decimal.Decimal, len(s.byID)+len(s.byName))
	for id, rate := range s.byID {
		out[strconv.Itoa(id)] = rate
	}
	for name, rate := range s.byName {
		out[name] = rate
	}
	return out
}

// Dirty reports whether there are unflushed mutations.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush rewrites the whole file if anything changed since the last flush.
// The file is replaced atomically.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty {
		return nil
	}
	data, err := s.encodeLocked()
	if err != nil {
		return fmt.Errorf("ratestore.Flush: encoding: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data); err != nil {
		return fmt.Errorf("ratestore.Flush: %w", err)
	}
	s.dirty = false
	return nil
}

func (s *Store) maybeFlush() error {
	if !s.opts.AutoFlush {
		return nil
	}
	return s.Flush()
}

// encodeLocked renders rates as JSON numbers with keys in a stable order:
// IDs ascending, then names alphabetically.
func (s *Store) encodeLocked() ([]byte, error) {
	ids := make([]int, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("{\n")
	first := true
	writeEntry := func(key string, rate decimal.Decimal) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		if !first {
			b.WriteString(",\n")
		}
		first = false
		b.WriteString("  ")
		b.Write(k)
		b.WriteString(": ")
		b.WriteString(rate.String())
		return nil
	}
	for _, id := range ids {
		if err := writeEntry(strconv.Itoa(id), s.byID[id]); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		if err := writeEntry(name, s.byName[name]); err != nil {
			return nil, err
		}
	}
	b.WriteString("\n}\n")
	return []byte(b.String()), nil
}

func parseID(key string) (int, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return id, true
}

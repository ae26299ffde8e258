// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package docdb implements the shared documentation store: an in-memory,
// query-by-reference collection of doc objects keyed by a process-wide
// monotonic ID.
//
// # Ownership Model
//
// The store owns its indexes but NOT the docs: Find returns live *doc.Doc
// references, and the export reconciler mutates visibility fields on them
// in place. Find-then-mutate observes the same object Insert stored. Docs
// must therefore only be mutated by the generation run that owns their
// file.
//
// # Thread Safety
//
// All Store methods are safe for concurrent use. The ID counter is a
// process-wide atomic, so generation runs on different files can insert
// concurrently without colliding.
package docdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
)

// idCounter is the process-wide monotonic doc ID source.
var idCounter atomic.Int64

// NextID returns the next doc ID. IDs start at 1 and never repeat within a
// process; docs generated from multiple files interleave without collision.
func NextID() int64 {
	return idCounter.Add(1)
}

// AdvanceIDTo raises the ID counter to at least id. Used when restoring a
// persisted store so new docs never collide with restored ones.
func AdvanceIDTo(id int64) {
	for {
		current := idCounter.Load()
		if current >= id {
			return
		}
		if idCounter.CompareAndSwap(current, id) {
			return
		}
	}
}

// Query selects docs by any combination of name, file path and category.
// Zero-valued fields match everything.
type Query struct {
	Name     string
	FilePath string
	Category doc.Category
}

// StoreOptions configures Store behavior.
type StoreOptions struct {
	// MaxDocs caps the number of stored docs. Inserts beyond the cap
	// return ErrMaxDocsExceeded. Default: 1,000,000.
	MaxDocs int
}

// DefaultStoreOptions returns the default options.
func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		MaxDocs: 1_000_000,
	}
}

// StoreOption is a functional option for configuring Store.
type StoreOption func(*StoreOptions)

// WithMaxDocs sets the store capacity.
func WithMaxDocs(max int) StoreOption {
	return func(o *StoreOptions) {
		o.MaxDocs = max
	}
}

// Store is the in-memory doc collection.
type Store struct {
	mu sync.RWMutex

	byID       map[int64]*doc.Doc
	byName     map[string][]*doc.Doc
	byFile     map[string][]*doc.Doc
	byCategory map[doc.Category][]*doc.Doc

	totalCount     int
	categoryCounts map[doc.Category]int

	options StoreOptions
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	options := DefaultStoreOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Store{
		byID:           make(map[int64]*doc.Doc),
		byName:         make(map[string][]*doc.Doc),
		byFile:         make(map[string][]*doc.Doc),
		byCategory:     make(map[doc.Category][]*doc.Doc),
		categoryCounts: make(map[doc.Category]int),
		options:        options,
	}
}

// Insert adds a doc to the store.
//
// Description:
//
//	Validates the doc, assigns the next monotonic ID when the doc has none,
//	and indexes it by ID, name, file and category. The store keeps the
//	given pointer; later mutations through Find results are visible to all
//	readers.
//
// Outputs:
//
//	error - ErrInvalidDoc (wrapped), ErrDuplicateID or ErrMaxDocsExceeded.
func (s *Store) Insert(d *doc.Doc) error {
	start := time.Now()

	// Validate before taking the lock.
	if err := d.Validate(); err != nil {
		recordOperation(context.Background(), "insert", time.Since(start), false)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.totalCount >= s.options.MaxDocs {
		recordOperation(context.Background(), "insert", time.Since(start), false)
		return ErrMaxDocsExceeded
	}

	if d.ID == 0 {
		d.ID = NextID()
	} else if _, exists := s.byID[d.ID]; exists {
		recordOperation(context.Background(), "insert", time.Since(start), false)
		return ErrDuplicateID
	}

	s.insertLocked(d)

	recordOperation(context.Background(), "insert", time.Since(start), true)
	recordSize(context.Background(), s.totalCount)
	return nil
}

// insertLocked indexes a validated doc. Caller holds the write lock.
func (s *Store) insertLocked(d *doc.Doc) {
	s.byID[d.ID] = d
	s.byName[d.Name] = append(s.byName[d.Name], d)
	s.byFile[d.FilePath] = append(s.byFile[d.FilePath], d)
	s.byCategory[d.Category] = append(s.byCategory[d.Category], d)
	s.totalCount++
	s.categoryCounts[d.Category]++
}

// InsertBatch adds many docs, validating everything before committing.
//
// Description:
//
//	Phase 1 validates every doc and checks for ID collisions (both against
//	the store and within the batch). Phase 2 commits. On validation
//	failure nothing is inserted and a BatchError lists every problem.
func (s *Store) InsertBatch(docs []*doc.Doc) error {
	start := time.Now()

	var errs []error
	for _, d := range docs {
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.totalCount+len(docs) > s.options.MaxDocs {
		errs = append(errs, ErrMaxDocsExceeded)
	}
	seen := make(map[int64]struct{}, len(docs))
	for _, d := range docs {
		if d.ID == 0 {
			continue
		}
		if _, exists := s.byID[d.ID]; exists {
			errs = append(errs, ErrDuplicateID)
			continue
		}
		if _, dup := seen[d.ID]; dup {
			errs = append(errs, ErrDuplicateID)
			continue
		}
		seen[d.ID] = struct{}{}
	}

	if len(errs) > 0 {
		recordOperation(context.Background(), "insert_batch", time.Since(start), false)
		return &BatchError{Errors: errs}
	}

	for _, d := range docs {
		if d.ID == 0 {
			d.ID = NextID()
		}
		s.insertLocked(d)
	}

	recordOperation(context.Background(), "insert_batch", time.Since(start), true)
	recordSize(context.Background(), s.totalCount)
	return nil
}

// Find returns live references to every doc matching the query.
//
// Description:
//
//	Matching is exact on each set field; unset fields match everything.
//	The returned slice is a fresh copy but its elements are the stored
//	docs themselves, so callers may mutate them in place (the export
//	reconciler depends on this).
func (s *Store) Find(q Query) []*doc.Doc {
	start := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Start from the most selective available index.
	var candidates []*doc.Doc
	switch {
	case q.Name != "":
		candidates = s.byName[q.Name]
	case q.FilePath != "":
		candidates = s.byFile[q.FilePath]
	case q.Category != doc.CategoryUnknown:
		candidates = s.byCategory[q.Category]
	default:
		candidates = make([]*doc.Doc, 0, s.totalCount)
		for _, d := range s.byID {
			candidates = append(candidates, d)
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	}

	out := make([]*doc.Doc, 0, len(candidates))
	for _, d := range candidates {
		if q.Name != "" && d.Name != q.Name {
			continue
		}
		if q.FilePath != "" && d.FilePath != q.FilePath {
			continue
		}
		if q.Category != doc.CategoryUnknown && d.Category != q.Category {
			continue
		}
		out = append(out, d)
	}

	recordOperation(context.Background(), "find", time.Since(start), true)
	return out
}

// FindOne returns the first doc matching the query in ID order, or nil.
func (s *Store) FindOne(q Query) *doc.Doc {
	matches := s.Find(q)
	if len(matches) == 0 {
		return nil
	}
	best := matches[0]
	for _, d := range matches[1:] {
		if d.ID < best.ID {
			best = d
		}
	}
	return best
}

// ByID returns the doc with the given ID, or ErrNotFound.
func (s *Store) ByID(id int64) (*doc.Doc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

// All returns every stored doc in ID order.
func (s *Store) All() []*doc.Doc {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*doc.Doc, 0, s.totalCount)
	for _, d := range s.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SearchByName returns docs whose name contains the query, case
// insensitively, ranked exact > prefix > substring and by ID within a
// rank. Empty queries return nothing.
func (s *Store) SearchByName(query string, limit int) []*doc.Doc {
	if query == "" || limit <= 0 {
		return nil
	}
	lowered := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	type ranked struct {
		d    *doc.Doc
		rank int
	}
	var matches []ranked
	for name, docs := range s.byName {
		nameLower := strings.ToLower(name)
		var rank int
		switch {
		case nameLower == lowered:
			rank = 0
		case strings.HasPrefix(nameLower, lowered):
			rank = 1
		case strings.Contains(nameLower, lowered):
			rank = 2
		default:
			continue
		}
		for _, d := range docs {
			matches = append(matches, ranked{d: d, rank: rank})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].d.ID < matches[j].d.ID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]*doc.Doc, len(matches))
	for i, m := range matches {
		out[i] = m.d
	}
	return out
}

// RemoveByFile deletes every doc generated from the given file and returns
// how many were removed. Used when a watched file changes and its docs are
// regenerated from scratch.
func (s *Store) RemoveByFile(filePath string) int {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.byFile[filePath]
	if len(removed) == 0 {
		recordOperation(context.Background(), "remove_by_file", time.Since(start), true)
		return 0
	}

	victim := make(map[int64]struct{}, len(removed))
	for _, d := range removed {
		victim[d.ID] = struct{}{}
		delete(s.byID, d.ID)
		s.categoryCounts[d.Category]--
		s.totalCount--
	}
	delete(s.byFile, filePath)

	keep := func(list []*doc.Doc) []*doc.Doc {
		out := list[:0]
		for _, d := range list {
			if _, gone := victim[d.ID]; !gone {
				out = append(out, d)
			}
		}
		return out
	}
	for name, list := range s.byName {
		if filtered := keep(list); len(filtered) == 0 {
			delete(s.byName, name)
		} else {
			s.byName[name] = filtered
		}
	}
	for cat, list := range s.byCategory {
		if filtered := keep(list); len(filtered) == 0 {
			delete(s.byCategory, cat)
		} else {
			s.byCategory[cat] = filtered
		}
	}

	recordOperation(context.Background(), "remove_by_file", time.Since(start), true)
	recordSize(context.Background(), s.totalCount)
	return len(removed)
}

// Clear removes every doc. The ID counter keeps advancing; cleared IDs are
// never reused.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID = make(map[int64]*doc.Doc)
	s.byName = make(map[string][]*doc.Doc)
	s.byFile = make(map[string][]*doc.Doc)
	s.byCategory = make(map[doc.Category][]*doc.Doc)
	s.totalCount = 0
	s.categoryCounts = make(map[doc.Category]int)

	recordSize(context.Background(), 0)
}

// Len returns the number of stored docs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalCount
}

// Stats summarizes store contents in O(categories) time.
type Stats struct {
	TotalDocs      int            `json:"total_docs"`
	FileCount      int            `json:"file_count"`
	CategoryCounts map[string]int `json:"category_counts"`
}

// Stats returns current store statistics.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.categoryCounts))
	for cat, n := range s.categoryCounts {
		if n > 0 {
			counts[cat.String()] = n
		}
	}
	return Stats{
		TotalDocs:      s.totalCount,
		FileCount:      len(s.byFile),
		CategoryCounts: counts,
	}
}

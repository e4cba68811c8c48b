// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
)

// MemoryStore is an in-memory CaseStore. It backs local development and the
// test suites; production deployments use the Weaviate backend.
type MemoryStore struct {
	mu        sync.RWMutex
	cases     map[string]datatypes.Case
	clients   map[string]datatypes.Client
	deadlines map[string]datatypes.Deadline
	notes     map[string][]datatypes.CaseNote
}

var _ CaseStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases:     make(map[string]datatypes.Case),
		clients:   make(map[string]datatypes.Client),
		deadlines: make(map[string]datatypes.Deadline),
		notes:     make(map[string][]datatypes.CaseNote),
	}
}

// PutCase inserts or replaces a case. Seeding helper, not part of CaseStore.
func (s *MemoryStore) PutCase(c datatypes.Case) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = c
}

// PutClient inserts or replaces a client. Seeding helper.
func (s *MemoryStore) PutClient(c datatypes.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

// PutDeadline inserts or replaces a deadline. Seeding helper.
func (s *MemoryStore) PutDeadline(d datatypes.Deadline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadlines[d.ID] = d
}

func (s *MemoryStore) GetCase(ctx context.Context, id string) (*datatypes.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) GetClient(ctx context.Context, id string) (*datatypes.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) SearchCases(ctx context.Context, query string, limit int) ([]datatypes.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	needle := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []datatypes.Case
	for _, c := range s.cases {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.Title), needle) ||
			strings.Contains(strings.ToLower(c.Facts), needle) ||
			strings.Contains(strings.ToLower(c.CaseType), needle) {
			results = append(results, c)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *MemoryStore) ListDeadlines(ctx context.Context, filter datatypes.DeadlineFilter) ([]datatypes.Deadline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []datatypes.Deadline
	for _, d := range s.deadlines {
		if filter.CaseID != "" && d.CaseID != filter.CaseID {
			continue
		}
		if !filter.IncludeCompleted && d.Completed {
			continue
		}
		if !filter.DueBefore.IsZero() && d.DueDate.After(filter.DueBefore) {
			continue
		}
		results = append(results, d)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DueDate.Before(results[j].DueDate)
	})
	return results, nil
}

func (s *MemoryStore) CreateDeadline(ctx context.Context, deadline *datatypes.Deadline) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[deadline.CaseID]; !ok {
		return ErrNotFound
	}
	if deadline.ID == "" {
		deadline.ID = uuid.NewString()
	}
	s.deadlines[deadline.ID] = *deadline
	return nil
}

func (s *MemoryStore) AddCaseNote(ctx context.Context, note *datatypes.CaseNote) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cases[note.CaseID]; !ok {
		return ErrNotFound
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	s.notes[note.CaseID] = append(s.notes[note.CaseID], *note)
	return nil
}

// NotesForCase returns the notes recorded for a case. Test helper.
func (s *MemoryStore) NotesForCase(caseID string) []datatypes.CaseNote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]datatypes.CaseNote, len(s.notes[caseID]))
	copy(out, s.notes[caseID])
	return out
}

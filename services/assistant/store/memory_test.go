// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
)

func seededStore() *MemoryStore {
	s := NewMemoryStore()
	s.PutClient(datatypes.Client{ID: "client-1", Name: "Jan Kowalski"})
	s.PutCase(datatypes.Case{
		ID: "case-1", ClientID: "client-1", Title: "Kowalski - sprawa rozwodowa",
		Facts: "Pozew o rozwód z orzekaniem o winie", CaseType: "rodzinne",
		Status: "open", CreatedAt: time.Now().Add(-48 * time.Hour),
	})
	s.PutCase(datatypes.Case{
		ID: "case-2", ClientID: "client-1", Title: "Kowalski - windykacja",
		Facts: "Nieopłacona faktura", CaseType: "gospodarcze",
		Status: "open", CreatedAt: time.Now(),
	})
	return s
}

func TestMemoryStore_GetCase(t *testing.T) {
	s := seededStore()

	c, err := s.GetCase(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, "rodzinne", c.CaseType)

	_, err = s.GetCase(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SearchCases(t *testing.T) {
	s := seededStore()

	results, err := s.SearchCases(context.Background(), "rozwod", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "case-1", results[0].ID)

	// Empty query lists everything, newest first.
	all, err := s.SearchCases(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "case-2", all[0].ID)

	// Limit applies after sorting.
	limited, err := s.SearchCases(context.Background(), "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "case-2", limited[0].ID)
}

func TestMemoryStore_DeadlineLifecycle(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	d := &datatypes.Deadline{
		CaseID:             "case-1",
		Title:              "Termin na odpowiedź na pozew",
		DueDate:            time.Now().Add(72 * time.Hour),
		ReminderDaysBefore: 2,
	}
	require.NoError(t, s.CreateDeadline(ctx, d))
	assert.NotEmpty(t, d.ID, "store assigns ids")

	early := &datatypes.Deadline{
		CaseID: "case-1", Title: "Rozprawa", DueDate: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, s.CreateDeadline(ctx, early))

	listed, err := s.ListDeadlines(ctx, datatypes.DeadlineFilter{CaseID: "case-1"})
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Rozprawa", listed[0].Title, "soonest first")

	// Completed deadlines are excluded by default.
	early.Completed = true
	s.PutDeadline(*early)
	listed, err = s.ListDeadlines(ctx, datatypes.DeadlineFilter{CaseID: "case-1"})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	err = s.CreateDeadline(ctx, &datatypes.Deadline{CaseID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_AddCaseNote(t *testing.T) {
	s := seededStore()
	ctx := context.Background()

	note := &datatypes.CaseNote{CaseID: "case-1", Body: "Klient dostarczył dokumenty."}
	require.NoError(t, s.AddCaseNote(ctx, note))
	assert.NotEmpty(t, note.ID)
	assert.False(t, note.CreatedAt.IsZero())

	notes := s.NotesForCase("case-1")
	require.Len(t, notes, 1)
	assert.Equal(t, "Klient dostarczył dokumenty.", notes[0].Body)

	err := s.AddCaseNote(ctx, &datatypes.CaseNote{CaseID: "missing", Body: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

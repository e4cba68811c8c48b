// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
)

func seededDispatcher(t *testing.T) (*Dispatcher, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	s.PutClient(datatypes.Client{ID: "client-1", Name: "Jan Kowalski", Email: "jan@example.com"})
	s.PutCase(datatypes.Case{
		ID: "case-1", ClientID: "client-1", Title: "Kowalski - sprawa rozwodowa",
		Facts: "Pozew o rozwód", CaseType: "rodzinne", Status: "open",
		CreatedAt: time.Now(),
	})
	d, err := NewDispatcher(s)
	require.NoError(t, err)
	return d, s
}

func testSession() *datatypes.Session {
	return &datatypes.Session{Key: "web:lawyer-1", UserID: "lawyer-1", Channel: "web"}
}

func TestDispatcher_UnknownTool(t *testing.T) {
	d, _ := seededDispatcher(t)

	result := d.Execute(context.Background(), "drop_tables", nil, testSession())

	assert.Contains(t, result.Err, "nieznane narzędzie")
	assert.Contains(t, result.Payload(), `"error"`)
}

func TestDispatcher_GetCase(t *testing.T) {
	d, _ := seededDispatcher(t)

	result := d.Execute(context.Background(), "get_case",
		map[string]any{"case_id": "case-1"}, testSession())

	require.Empty(t, result.Err)
	out, ok := result.Data.(GetCaseOutput)
	require.True(t, ok)
	assert.Equal(t, "case-1", out.Case.ID)
	require.NotNil(t, out.Client)
	assert.Equal(t, "Jan Kowalski", out.Client.Name)
}

func TestDispatcher_NotFoundIsGenericized(t *testing.T) {
	d, _ := seededDispatcher(t)

	result := d.Execute(context.Background(), "get_case",
		map[string]any{"case_id": "missing"}, testSession())

	assert.Equal(t, "nie znaleziono wskazanego rekordu", result.Err)
}

func TestDispatcher_ValidationErrorIsRelayedVerbatim(t *testing.T) {
	d, _ := seededDispatcher(t)

	result := d.Execute(context.Background(), "get_case",
		map[string]any{}, testSession())

	assert.Contains(t, result.Err, `"case_id"`)
}

func TestDispatcher_SetActiveCaseMutatesSession(t *testing.T) {
	d, _ := seededDispatcher(t)
	sess := testSession()

	result := d.Execute(context.Background(), "set_active_case",
		map[string]any{"case_id": "case-1"}, sess)

	require.Empty(t, result.Err)
	assert.Equal(t, "case-1", sess.Metadata.ActiveCaseID)

	// Hallucinated ids must not poison the session.
	result = d.Execute(context.Background(), "set_active_case",
		map[string]any{"case_id": "missing"}, sess)
	assert.NotEmpty(t, result.Err)
	assert.Equal(t, "case-1", sess.Metadata.ActiveCaseID)
}

func TestDispatcher_CreateDeadlineDefaultsToActiveCase(t *testing.T) {
	d, s := seededDispatcher(t)
	sess := testSession()
	sess.Metadata.ActiveCaseID = "case-1"

	result := d.Execute(context.Background(), "create_deadline", map[string]any{
		"title":    "Termin na apelację",
		"due_date": "2026-10-15",
	}, sess)

	require.Empty(t, result.Err)
	listed, err := s.ListDeadlines(context.Background(),
		datatypes.DeadlineFilter{CaseID: "case-1"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Termin na apelację", listed[0].Title)
	assert.Equal(t, 3, listed[0].ReminderDaysBefore, "default reminder lead time")
}

func TestDispatcher_PayloadShape(t *testing.T) {
	d, _ := seededDispatcher(t)

	result := d.Execute(context.Background(), "search_cases",
		map[string]any{"query": "rozwod"}, testSession())
	require.Empty(t, result.Err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(result.Payload()), &decoded))
	assert.Contains(t, decoded, "result")
}

func TestResult_PayloadTruncation(t *testing.T) {
	r := Result{Data: strings.Repeat("ą", datatypes.MaxToolResultBytes)}

	payload := r.Payload()

	assert.LessOrEqual(t, len(payload), datatypes.MaxToolResultBytes)
	assert.True(t, r.Truncated)
	assert.Contains(t, payload, TruncationMarker)
}

type panickyTool struct{}

func (panickyTool) Name() string           { return "panicky" }
func (panickyTool) Definition() Definition { return Definition{Name: "panicky"} }
func (panickyTool) Execute(context.Context, map[string]any, *datatypes.Session) (any, error) {
	panic("boom")
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(panickyTool{}))
	d := &Dispatcher{registry: registry, timeout: time.Second}

	result := d.Execute(context.Background(), "panicky", nil, testSession())

	assert.Contains(t, result.Err, "błąd wewnętrzny")
}

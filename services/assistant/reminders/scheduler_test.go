// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reminders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
)

type notifyRecorder struct {
	mu      sync.Mutex
	batches [][]Reminder
	err     error
}

func (n *notifyRecorder) fn(_ context.Context, batch []Reminder) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, batch)
	return n.err
}

func (n *notifyRecorder) all() []Reminder {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Reminder
	for _, b := range n.batches {
		out = append(out, b...)
	}
	return out
}

func deadlineStore(t *testing.T, deadlines ...datatypes.Deadline) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	s.PutCase(datatypes.Case{ID: "case-1", Title: "Sprawa"})
	for _, d := range deadlines {
		s.PutDeadline(d)
	}
	return s
}

func TestScanOnce_ClassifiesAndDeduplicates(t *testing.T) {
	now := time.Now()
	s := deadlineStore(t,
		datatypes.Deadline{
			ID: "d-upcoming", CaseID: "case-1", Title: "Odpowiedź na pozew",
			DueDate: now.Add(48 * time.Hour), ReminderDaysBefore: 3,
		},
		datatypes.Deadline{
			ID: "d-overdue", CaseID: "case-1", Title: "Rozprawa",
			DueDate: now.Add(-24 * time.Hour),
		},
		datatypes.Deadline{
			ID: "d-far", CaseID: "case-1", Title: "Daleki termin",
			DueDate: now.Add(30 * 24 * time.Hour), ReminderDaysBefore: 3,
		},
		datatypes.Deadline{
			ID: "d-done", CaseID: "case-1", Title: "Zakończony",
			DueDate: now.Add(-24 * time.Hour), Completed: true,
		},
	)
	recorder := &notifyRecorder{}
	scheduler := NewScheduler(s, recorder.fn, nil, Config{})

	scheduler.ScanOnce(context.Background())

	got := recorder.all()
	require.Len(t, got, 2)
	kinds := map[string]string{}
	for _, r := range got {
		kinds[r.Deadline.ID] = r.Kind
	}
	assert.Equal(t, KindUpcoming, kinds["d-upcoming"])
	assert.Equal(t, KindOverdue, kinds["d-overdue"])

	// A second scan finds nothing new.
	scheduler.ScanOnce(context.Background())
	assert.Len(t, recorder.all(), 2, "reminders must not repeat")
}

func TestScanOnce_UpcomingBecomesOverdue(t *testing.T) {
	now := time.Now()
	s := deadlineStore(t, datatypes.Deadline{
		ID: "d-1", CaseID: "case-1", Title: "Termin",
		DueDate: now.Add(time.Hour), ReminderDaysBefore: 3,
	})
	recorder := &notifyRecorder{}
	scheduler := NewScheduler(s, recorder.fn, nil, Config{})

	scheduler.ScanOnce(context.Background())
	require.Len(t, recorder.all(), 1)

	// The deadline passes; the overdue reminder is a distinct key.
	s.PutDeadline(datatypes.Deadline{
		ID: "d-1", CaseID: "case-1", Title: "Termin",
		DueDate: now.Add(-time.Hour), ReminderDaysBefore: 3,
	})
	scheduler.ScanOnce(context.Background())

	got := recorder.all()
	require.Len(t, got, 2)
	assert.Equal(t, KindUpcoming, got[0].Kind)
	assert.Equal(t, KindOverdue, got[1].Kind)
}

func TestScanOnce_NotifyFailureIsSwallowed(t *testing.T) {
	s := deadlineStore(t, datatypes.Deadline{
		ID: "d-1", CaseID: "case-1", Title: "Termin",
		DueDate: time.Now().Add(-time.Hour),
	})
	recorder := &notifyRecorder{err: errors.New("telegram down")}
	scheduler := NewScheduler(s, recorder.fn, nil, Config{})

	// Must not panic or propagate.
	scheduler.ScanOnce(context.Background())
	require.Len(t, recorder.all(), 1)
}

func TestScheduler_StartStop(t *testing.T) {
	s := deadlineStore(t, datatypes.Deadline{
		ID: "d-1", CaseID: "case-1", Title: "Termin",
		DueDate: time.Now().Add(-time.Hour),
	})
	recorder := &notifyRecorder{}
	scheduler := NewScheduler(s, recorder.fn, nil, Config{Interval: time.Hour})

	require.NoError(t, scheduler.Start(context.Background()))
	assert.Error(t, scheduler.Start(context.Background()), "double start is rejected")

	// The immediate first scan fires without waiting for the ticker.
	require.Eventually(t, func() bool {
		return len(recorder.all()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	scheduler.Stop()
	scheduler.Stop() // idempotent
}

func TestDedupSet_FIFOEviction(t *testing.T) {
	set := newDedupSet(2)

	assert.True(t, set.MarkIfNew("a"))
	assert.True(t, set.MarkIfNew("b"))
	assert.False(t, set.MarkIfNew("a"), "still present")

	assert.True(t, set.MarkIfNew("c"), "evicts the oldest")
	assert.True(t, set.MarkIfNew("a"), "a was evicted, counts as new again")
	assert.Equal(t, 2, set.Len())
}

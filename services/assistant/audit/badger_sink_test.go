// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerSink_RecordAndRecent(t *testing.T) {
	sink, err := NewInMemoryBadgerSink()
	require.NoError(t, err)
	defer sink.Close()

	base := time.Now()
	sink.Record(context.Background(), Event{
		Time: base, Type: EventTurn, SessionKey: "web:lawyer-1",
		Decision: "local", Reason: "pii_detected", Provider: ProviderLocal,
		Model: "bielik-11b", PiiTypes: []string{"pesel"}, PiiCount: 1,
	})
	sink.Record(context.Background(), Event{
		Time: base.Add(time.Second), Type: EventRefusal, SessionKey: "web:lawyer-1",
		Reason: "case_strict_mode", Provider: ProviderNone,
	})

	require.Eventually(t, func() bool {
		events, err := sink.Recent(10)
		return err == nil && len(events) == 2
	}, 2*time.Second, 10*time.Millisecond, "writer goroutine must drain the queue")

	events, err := sink.Recent(10)
	require.NoError(t, err)
	assert.Equal(t, EventRefusal, events[0].Type, "newest first")
	assert.Equal(t, EventTurn, events[1].Type)
	assert.Equal(t, []string{"pesel"}, events[1].PiiTypes)
}

func TestBadgerSink_RecentLimit(t *testing.T) {
	sink, err := NewInMemoryBadgerSink()
	require.NoError(t, err)
	defer sink.Close()

	for i := 0; i < 5; i++ {
		sink.Record(context.Background(), Event{
			Time: time.Now().Add(time.Duration(i) * time.Millisecond),
			Type: EventTurn,
		})
	}

	require.Eventually(t, func() bool {
		events, err := sink.Recent(100)
		return err == nil && len(events) == 5
	}, 2*time.Second, 10*time.Millisecond)

	events, err := sink.Recent(2)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestBadgerSink_CloseIsIdempotent(t *testing.T) {
	sink, err := NewInMemoryBadgerSink()
	require.NoError(t, err)

	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
}

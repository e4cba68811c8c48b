// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// EventRetention is how long audit records live before Badger expires them.
const EventRetention = 90 * 24 * time.Hour

// recordBuffer is the channel depth between callers and the writer
// goroutine. Overflow drops the event with a log line rather than blocking
// a conversation turn.
const recordBuffer = 256

// BadgerSink persists audit events to an embedded Badger database.
//
// Writes happen on a single background goroutine fed through a buffered
// channel, so Record is non-blocking for the orchestrator. Keys are
// "audit:<unix-nano>:<uuid>", which keeps the natural iteration order
// chronological.
type BadgerSink struct {
	db      *badger.DB
	events  chan Event
	done    chan struct{}
	closeMu sync.Mutex
	closed  bool
}

var _ Sink = (*BadgerSink)(nil)

// badgerLogger adapts slog to Badger's logger interface.
type badgerLogger struct{ logger *slog.Logger }

func (l *badgerLogger) Errorf(format string, args ...any)   { l.logger.Error(fmt.Sprintf(format, args...)) }
func (l *badgerLogger) Warningf(format string, args ...any) { l.logger.Warn(fmt.Sprintf(format, args...)) }
func (l *badgerLogger) Infof(format string, args ...any)    { l.logger.Debug(fmt.Sprintf(format, args...)) }
func (l *badgerLogger) Debugf(format string, args ...any)   { l.logger.Debug(fmt.Sprintf(format, args...)) }

// NewBadgerSink opens (or creates) the audit database at path and starts
// the writer goroutine.
func NewBadgerSink(path string) (*BadgerSink, error) {
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("create audit directory %s: %w", path, err)
	}
	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: slog.Default()})
	return newBadgerSink(opts)
}

// NewInMemoryBadgerSink backs the sink with an in-memory database. Test
// helper.
func NewInMemoryBadgerSink() (*BadgerSink, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return newBadgerSink(opts)
}

func newBadgerSink(opts badger.Options) (*BadgerSink, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	s := &BadgerSink{
		db:     db,
		events: make(chan Event, recordBuffer),
		done:   make(chan struct{}),
	}
	go s.writeLoop()
	return s, nil
}

// Record queues an event for persistence. Drops on overflow.
func (s *BadgerSink) Record(_ context.Context, event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	select {
	case s.events <- event:
	default:
		slog.Warn("Audit buffer full, dropping event", "type", event.Type)
	}
}

// Close drains pending events and closes the database.
func (s *BadgerSink) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.events)
	<-s.done
	return s.db.Close()
}

func (s *BadgerSink) writeLoop() {
	defer close(s.done)
	for event := range s.events {
		if err := s.write(event); err != nil {
			slog.Error("Failed to persist audit event",
				"type", event.Type, "error", err)
		}
	}
}

func (s *BadgerSink) write(event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	key := fmt.Sprintf("audit:%d:%s", event.Time.UnixNano(), uuid.NewString())
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(EventRetention)
		return txn.SetEntry(entry)
	})
}

// Recent returns up to limit most recent events, newest first. Serves the
// operator endpoint; not on the conversation hot path.
func (s *BadgerSink) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []Event
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte("audit:")
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration needs a seek key past the whole prefix range.
		for it.Seek([]byte("audit;")); it.Valid() && len(events) < limit; it.Next() {
			var event Event
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			})
			if err != nil {
				return err
			}
			events = append(events, event)
		}
		return nil
	})
	return events, err
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package reminders runs the deadline reminder scheduler: a periodic scan
// over the case store that notifies about approaching and overdue
// procedural deadlines exactly once each.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/audit"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/observability"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
)

// DefaultInterval is the scan period. Deadlines move on a scale of days;
// five minutes keeps reminders prompt without hammering the store.
const DefaultInterval = 5 * time.Minute

// Reminder kinds.
const (
	KindUpcoming = "upcoming"
	KindOverdue  = "overdue"
)

// Reminder is one notification about a deadline.
type Reminder struct {
	Deadline datatypes.Deadline `json:"deadline"`
	Kind     string             `json:"kind"`
}

// NotifyFunc delivers a batch of reminders. Called once per scan with every
// reminder that scan produced; an error is logged and the batch will NOT be
// retried (the dedup set already claimed the keys, repeating risks spam).
type NotifyFunc func(ctx context.Context, batch []Reminder) error

// Config tunes the scheduler.
type Config struct {
	// Interval between scans. Default: DefaultInterval.
	Interval time.Duration

	// DedupCapacity bounds the sent-reminder memory. Default: 1024.
	DedupCapacity int

	// Horizon is how far past a reminder date a deadline still produces an
	// upcoming reminder. Default: no limit.
	Horizon time.Duration
}

// Scheduler periodically scans deadlines and dispatches reminders.
//
// Uses the ticker + done channel pattern: Start launches the loop with an
// immediate first scan, Stop shuts it down and waits for the in-flight
// scan to finish. Scan failures are logged and never propagate; a broken
// store must not take the reminder loop down with it.
type Scheduler struct {
	cases    store.CaseStore
	notify   NotifyFunc
	sink     audit.Sink
	interval time.Duration
	horizon  time.Duration
	sent     *dedupSet

	mu      sync.Mutex
	done    chan struct{}
	stopped chan struct{}
	running bool
}

// NewScheduler builds a scheduler. The audit sink may be nil.
func NewScheduler(cases store.CaseStore, notify NotifyFunc, sink audit.Sink,
	cfg Config) *Scheduler {

	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if sink == nil {
		sink = audit.SlogSink{}
	}
	return &Scheduler{
		cases:    cases,
		notify:   notify,
		sink:     sink,
		interval: cfg.Interval,
		horizon:  cfg.Horizon,
		sent:     newDedupSet(cfg.DedupCapacity),
	}
}

// Start launches the scan loop. The first scan runs immediately so a
// restart never delays an already-due reminder by a full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("reminder scheduler is already running")
	}
	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})

	go s.runLoop(ctx)
	slog.Info("Deadline reminder scheduler started", "interval", s.interval)
	return nil
}

// Stop shuts the loop down and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped
	slog.Info("Deadline reminder scheduler stopped")
}

func (s *Scheduler) runLoop(ctx context.Context) {
	defer close(s.stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.ScanOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.ScanOnce(ctx)
		}
	}
}

// ScanOnce performs a single scan and dispatch. Exported for the CLI and
// the tests; the loop calls it on every tick.
func (s *Scheduler) ScanOnce(ctx context.Context) {
	deadlines, err := s.cases.ListDeadlines(ctx, datatypes.DeadlineFilter{})
	if err != nil {
		slog.Error("Reminder scan could not list deadlines", "error", err)
		return
	}

	now := time.Now()
	var batch []Reminder
	for _, d := range deadlines {
		kind, ok := s.classify(d, now)
		if !ok {
			continue
		}
		key := d.ID + ":" + kind
		if !s.sent.MarkIfNew(key) {
			continue
		}
		batch = append(batch, Reminder{Deadline: d, Kind: kind})
	}
	if len(batch) == 0 {
		return
	}

	if err := s.notify(ctx, batch); err != nil {
		slog.Error("Reminder notification failed",
			"count", len(batch), "error", err)
		return
	}

	observability.RecordReminders(len(batch))
	for _, r := range batch {
		s.sink.Record(ctx, audit.Event{
			Type:   audit.EventReminder,
			Detail: fmt.Sprintf("%s:%s", r.Deadline.ID, r.Kind),
		})
	}
	slog.Info("Deadline reminders dispatched", "count", len(batch))
}

// classify decides whether a deadline is due for a reminder right now.
func (s *Scheduler) classify(d datatypes.Deadline, now time.Time) (string, bool) {
	if d.Completed {
		return "", false
	}
	if now.After(d.DueDate) {
		return KindOverdue, true
	}
	reminderAt := d.ReminderAt()
	if now.Before(reminderAt) {
		return "", false
	}
	if s.horizon > 0 && now.Sub(reminderAt) > s.horizon {
		return "", false
	}
	return KindUpcoming, true
}

// StartDeadlineReminders wires a scheduler with defaults and starts it.
// Returns the scheduler so the caller can Stop it on shutdown.
func StartDeadlineReminders(ctx context.Context, cases store.CaseStore,
	notify NotifyFunc, sink audit.Sink) (*Scheduler, error) {

	s := NewScheduler(cases, notify, sink, Config{})
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

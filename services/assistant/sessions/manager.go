// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sessions provides in-memory conversation state keyed by channel
// and user, with per-session serialization.
package sessions

import (
	"sync"
	"time"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
)

// Key derives the session key from channel and user. One conversation per
// user per channel.
func Key(channel, userID string) string {
	return channel + ":" + userID
}

type entry struct {
	mu   sync.Mutex
	sess *datatypes.Session
}

// Manager owns the live sessions.
//
// With serializes all access to one session: two concurrent messages from
// the same user execute their turns one after another, so the history a
// turn classifies against is the history it appends to. Different sessions
// proceed in parallel.
type Manager struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{entries: make(map[string]*entry)}
}

func (m *Manager) entryFor(channel, userID string) *entry {
	key := Key(channel, userID)
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		now := time.Now()
		e = &entry{sess: &datatypes.Session{
			Key:       key,
			UserID:    userID,
			Channel:   channel,
			CreatedAt: now,
			UpdatedAt: now,
		}}
		m.entries[key] = e
	}
	return e
}

// With runs fn with exclusive access to the session, creating it on first
// use. The session pointer must not escape fn.
func (m *Manager) With(channel, userID string, fn func(sess *datatypes.Session) error) error {
	e := m.entryFor(channel, userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	err := fn(e.sess)
	e.sess.UpdatedAt = time.Now()
	return err
}

// Snapshot returns a copy of the session state, or false when the session
// does not exist yet. The copy shares no mutable state with the live
// session.
func (m *Manager) Snapshot(channel, userID string) (datatypes.Session, bool) {
	m.mu.Lock()
	e, ok := m.entries[Key(channel, userID)]
	m.mu.Unlock()
	if !ok {
		return datatypes.Session{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := *e.sess
	snapshot.Turns = append([]datatypes.Message(nil), e.sess.Turns...)
	return snapshot, true
}

// Reset drops the session, forgetting its history and metadata.
func (m *Manager) Reset(channel, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, Key(channel, userID))
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

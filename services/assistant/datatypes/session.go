// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// =============================================================================
// Conversation Sessions
// =============================================================================

// SessionMetadata is the mutable metadata bag attached to a session.
//
// # Description
//
// The orchestrator mutates metadata only (never the turn list it does not
// own). ActiveCaseID pins the conversation to a case; its presence alone is
// treated as sensitive context, because the system prompt embeds the case's
// client name and facts.
type SessionMetadata struct {
	// ActiveCaseID is the case this conversation is currently pinned to.
	// Empty when no case context is active.
	ActiveCaseID string `json:"active_case_id,omitempty"`

	// PrivacyMode is the session-level override. Empty means "use global".
	PrivacyMode PrivacyMode `json:"privacy_mode,omitempty"`
}

// Session identifies one conversation.
//
// # Description
//
// Owned by the gateway layer. The orchestrator reads turns and mutates
// metadata. Persistence is the store's responsibility, not this type's.
//
// # Thread Safety
//
// Session is NOT safe for concurrent use. The gateway serializes message
// handling within one session (see sessions.Manager) while allowing
// unlimited concurrency across sessions.
type Session struct {
	// Key is the stable session identifier (channel-scoped).
	Key string `json:"key"`

	// UserID is the owning user.
	UserID string `json:"user_id"`

	// Channel names the delivery channel ("web", "telegram", ...).
	Channel string `json:"channel"`

	// Turns is the ordered conversation history.
	Turns []Message `json:"turns"`

	// Metadata is the mutable metadata bag.
	Metadata SessionMetadata `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppendTurn appends one turn to the conversation history.
func (s *Session) AppendTurn(role, content string) {
	now := time.Now().UTC()
	s.Turns = append(s.Turns, Message{Role: role, Content: content, Timestamp: now})
	s.UpdatedAt = now
}

// RecentTurns returns up to n of the most recent turns, oldest first.
//
// The lookback is bounded to align with the context window actually sent
// to the model.
func (s *Session) RecentTurns(n int) []Message {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	if len(s.Turns) <= n {
		out := make([]Message, len(s.Turns))
		copy(out, s.Turns)
		return out
	}
	out := make([]Message, n)
	copy(out, s.Turns[len(s.Turns)-n:])
	return out
}

// EffectivePrivacyMode resolves the session-level override against the
// global mode. Invalid or empty session values fall back to the global mode.
func (s *Session) EffectivePrivacyMode(global PrivacyMode) PrivacyMode {
	if s.Metadata.PrivacyMode.Valid() {
		return s.Metadata.PrivacyMode
	}
	if global.Valid() {
		return global
	}
	return PrivacyModeAuto
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package audit records the privacy decision trail: which provider handled
// each turn, why, and what the detector saw, in aggregate terms only.
//
// Events never carry message content, PII values, or the anonymization
// mapping. Types and counts are the whole vocabulary. That restriction is
// what makes the trail safe to keep.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Event types.
const (
	EventTurn              = "turn"
	EventRefusal           = "refusal"
	EventReminder          = "reminder"
	EventPrivacyModeChange = "privacy_mode_change"
)

// Providers.
const (
	ProviderLocal = "local"
	ProviderCloud = "cloud"
	ProviderNone  = "none"
)

// Event is one audit record.
type Event struct {
	Time       time.Time `json:"time"`
	Type       string    `json:"type"`
	SessionKey string    `json:"session_key"`
	UserID     string    `json:"user_id"`

	// CaseID is the session's active case at the time of the event.
	CaseID string `json:"case_id,omitempty"`

	// Decision and Reason echo the privacy classification for the turn;
	// PrivacyMode is the session-level override in force.
	Decision    string `json:"decision,omitempty"`
	Reason      string `json:"reason,omitempty"`
	PrivacyMode string `json:"privacy_mode,omitempty"`

	// Provider and Model identify who produced the answer.
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`

	// ToolCalls is the number of tool rounds the turn consumed.
	ToolCalls int `json:"tool_calls,omitempty"`

	// PiiTypes and PiiCount summarize detection; never values.
	PiiTypes []string `json:"pii_types,omitempty"`
	PiiCount int      `json:"pii_count,omitempty"`

	// AnonymizedEntities is the size of the per-request mapping.
	AnonymizedEntities int `json:"anonymized_entities,omitempty"`

	// ErrorKind categorizes a failure ("unreachable", "timeout", ...).
	ErrorKind string `json:"error_kind,omitempty"`

	// Detail carries event-type specific context, e.g. the new mode for a
	// privacy_mode_change.
	Detail string `json:"detail,omitempty"`
}

// Sink receives audit events.
//
// Record must never block the calling turn and must never return an error
// to it; a failing audit path degrades to logging, not to refusing users.
type Sink interface {
	Record(ctx context.Context, event Event)
	Close() error
}

// SlogSink writes events to the structured log. The fallback sink when no
// durable store is configured.
type SlogSink struct{}

var _ Sink = (*SlogSink)(nil)

func (SlogSink) Record(_ context.Context, event Event) {
	slog.Info("audit",
		"type", event.Type,
		"session_key", event.SessionKey,
		"case_id", event.CaseID,
		"decision", event.Decision,
		"reason", event.Reason,
		"privacy_mode", event.PrivacyMode,
		"provider", event.Provider,
		"model", event.Model,
		"tool_calls", event.ToolCalls,
		"pii_types", event.PiiTypes,
		"pii_count", event.PiiCount,
		"anonymized_entities", event.AnonymizedEntities,
		"error_kind", event.ErrorKind,
		"detail", event.Detail,
	)
}

func (SlogSink) Close() error { return nil }

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides data structures shared across the assistant
// service: sessions, cases, chat messages, and privacy routing decisions.
package datatypes

// =============================================================================
// Privacy Modes
// =============================================================================

// PrivacyMode controls whether message content may leave the local boundary.
//
// # Description
//
// Three modes are supported:
//   - auto: protect only when sensitive content is detected (default)
//   - strict: always route to the local model
//   - off: no protection, cloud is always eligible
//
// A mode can be set globally, per session (metadata), or per case. A case-level
// "strict" always wins over session and global settings.
type PrivacyMode string

const (
	PrivacyModeAuto   PrivacyMode = "auto"
	PrivacyModeStrict PrivacyMode = "strict"
	PrivacyModeOff    PrivacyMode = "off"
)

// Valid reports whether m is one of the known privacy modes.
func (m PrivacyMode) Valid() bool {
	switch m {
	case PrivacyModeAuto, PrivacyModeStrict, PrivacyModeOff:
		return true
	}
	return false
}

// =============================================================================
// Routing Decisions
// =============================================================================

// Decision is the routing outcome for a single inbound message.
type Decision string

const (
	// DecisionLocal routes the message to the locally hosted model.
	DecisionLocal Decision = "local"

	// DecisionCloudAnonymized permits the cloud provider after anonymization.
	DecisionCloudAnonymized Decision = "cloud_anonymized"

	// DecisionRefuse refuses cloud processing entirely.
	DecisionRefuse Decision = "refuse"
)

// DecisionReason is the fixed vocabulary explaining a routing decision.
//
// Reasons are consumed only for audit logging and branching. No code may
// infer behavior from free text.
type DecisionReason string

const (
	ReasonPrivacyOff     DecisionReason = "privacy_off"
	ReasonCaseStrictMode DecisionReason = "case_strict_mode"
	ReasonStrictMode     DecisionReason = "strict_mode"
	ReasonPiiDetected    DecisionReason = "pii_detected"
	ReasonNoPii          DecisionReason = "no_pii"
)

// PrivacyDecision is the ephemeral outcome of classifying one message.
//
// # Description
//
// Never persisted; recomputed per incoming message. A decision of local or
// refuse must never result in the message text, case facts, or model output
// reaching the cloud provider under any retry or fallback path within the
// same turn.
type PrivacyDecision struct {
	Decision Decision       `json:"decision"`
	Reason   DecisionReason `json:"reason"`
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package privacy implements the privacy decision procedure: the per-message
// classifier that chooses between local and cloud routing, and the
// per-request anonymizer applied when cloud use is permitted.
package privacy

import (
	"context"
	"log/slog"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/policy_engine"
)

// DefaultHistoryWindow is how many recent turns are scanned for sensitive
// content when the current message alone is clean. Aligned with the context
// window actually sent to the model.
const DefaultHistoryWindow = 20

// Detector scans text for PII entities and sensitive subject matter.
//
// Satisfied by *policy_engine.PiiEngine. The two methods mirror the
// expensive and cheap scan paths: Detect for the current message (span
// detail feeds the anonymizer and audit statistics), ContainsSensitive for
// history scanning.
type Detector interface {
	Detect(text string) policy_engine.DetectionResult
	ContainsSensitive(text string) bool
}

// CaseReader provides the single case lookup the classifier needs.
type CaseReader interface {
	GetCase(ctx context.Context, id string) (*datatypes.Case, error)
}

// Classification is the classifier output: the routing decision plus the
// detection statistics that produced it. Detection carries match spans for
// the current message only; audit consumers must use Types()/counts, never
// values.
type Classification struct {
	datatypes.PrivacyDecision
	Detection policy_engine.DetectionResult
}

// Classifier decides, per message, whether content may be sent to the cloud
// provider or must stay local.
//
// # Description
//
// This is a decision table, not a scored classifier. The precedence order of
// the rules is the entire specification: later rules are deliberately
// unreachable once an earlier one fires. A strict case always blocks cloud
// even if downstream policy flags are permissive.
//
// # Thread Safety
//
// Classifier is stateless and safe for concurrent use.
type Classifier struct {
	detector      Detector
	historyWindow int
}

// NewClassifier creates a classifier over the given detector.
func NewClassifier(detector Detector) *Classifier {
	return &Classifier{
		detector:      detector,
		historyWindow: DefaultHistoryWindow,
	}
}

// Classify judges the sensitivity of one inbound message.
//
// # Description
//
// Applies the rules in strict precedence order:
//
//  1. Effective mode off: cloud eligible, no further checks.
//  2. PII detection on the raw message text.
//  3. Active case present: content is sensitive unconditionally (the system
//     prompt embeds client identity); a case-level strict override
//     short-circuits to local and wins over everything else.
//  4. No PII yet: scan the recent conversation history (bounded window).
//  5. Effective mode strict: local.
//  6. Sensitive content found: local.
//  7. Otherwise: cloud with anonymization.
//
// # Outputs
//
// Classify is total over its inputs: it always returns a decision and never
// an error. A case lookup failure is treated as "sensitive, no override"
// and logged.
func (c *Classifier) Classify(ctx context.Context, text string, sess *datatypes.Session,
	cases CaseReader, globalMode datatypes.PrivacyMode) Classification {

	mode := sess.EffectivePrivacyMode(globalMode)

	// Rule 1: protection disabled.
	if mode == datatypes.PrivacyModeOff {
		return Classification{PrivacyDecision: datatypes.PrivacyDecision{
			Decision: datatypes.DecisionCloudAnonymized,
			Reason:   datatypes.ReasonPrivacyOff,
		}}
	}

	// Rule 2: scan the raw message text.
	detection := c.detector.Detect(text)
	sensitive := detection.HasPii() || detection.HasSensitiveKeywords()

	// Rule 3: an active case makes the conversation sensitive by itself,
	// and a case-level strict override wins over everything else.
	if caseID := sess.Metadata.ActiveCaseID; caseID != "" {
		sensitive = true
		if cases != nil {
			activeCase, err := cases.GetCase(ctx, caseID)
			switch {
			case err != nil:
				slog.Warn("Classifier could not load active case, treating as sensitive",
					"case_id", caseID, "error", err)
			case activeCase.PrivacyMode == datatypes.PrivacyModeStrict:
				return Classification{
					PrivacyDecision: datatypes.PrivacyDecision{
						Decision: datatypes.DecisionLocal,
						Reason:   datatypes.ReasonCaseStrictMode,
					},
					Detection: detection,
				}
			}
		}
	}

	// Rule 4: clean message, but earlier turns may carry sensitive context.
	if !sensitive {
		for _, turn := range sess.RecentTurns(c.historyWindow) {
			if c.detector.ContainsSensitive(turn.Content) {
				sensitive = true
				break
			}
		}
	}

	// Rule 5: strict mode forces local regardless of content.
	if mode == datatypes.PrivacyModeStrict {
		return Classification{
			PrivacyDecision: datatypes.PrivacyDecision{
				Decision: datatypes.DecisionLocal,
				Reason:   datatypes.ReasonStrictMode,
			},
			Detection: detection,
		}
	}

	// Rule 6: sensitive content stays local.
	if sensitive {
		return Classification{
			PrivacyDecision: datatypes.PrivacyDecision{
				Decision: datatypes.DecisionLocal,
				Reason:   datatypes.ReasonPiiDetected,
			},
			Detection: detection,
		}
	}

	// Rule 7: clean conversation, cloud eligible.
	return Classification{
		PrivacyDecision: datatypes.PrivacyDecision{
			Decision: datatypes.DecisionCloudAnonymized,
			Reason:   datatypes.ReasonNoPii,
		},
		Detection: detection,
	}
}

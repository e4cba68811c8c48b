// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package privacy

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// placeholderRe matches the placeholder shape produced by Anonymize.
// Used to scrub placeholders that survive into user-visible output when a
// mapping has been lost (model paraphrase, truncated tool result).
var placeholderRe = regexp.MustCompile(`\[\[[A-Z0-9_]+_\d+\]\]`)

// Anonymizer performs reversible PII redaction for a single request.
//
// # Description
//
// Each detected entity value is replaced with a stable placeholder of the
// form [[TYPE_N]]; repeated occurrences of the same value reuse the same
// placeholder so the model sees a consistent entity. The mapping lives only
// for the lifetime of one orchestrator request and is never persisted.
//
// # Limitations
//
// Replacement is exact-match on detected values. A spelling variant of a
// name that the detector missed will pass through unredacted; that risk is
// owned by the detection patterns, not the anonymizer.
//
// # Thread Safety
//
// Not safe for concurrent use. The orchestrator creates one Anonymizer per
// request and confines it to that request goroutine.
type Anonymizer struct {
	detector Detector

	byValue       map[string]string
	byPlaceholder map[string]string
	counters      map[string]int
}

// NewAnonymizer creates an empty per-request anonymizer.
func NewAnonymizer(detector Detector) *Anonymizer {
	return &Anonymizer{
		detector:      detector,
		byValue:       make(map[string]string),
		byPlaceholder: make(map[string]string),
		counters:      make(map[string]int),
	}
}

// Anonymize detects PII entities in text and replaces each with its
// placeholder, registering new values in the request mapping. Returns the
// redacted text.
func (a *Anonymizer) Anonymize(text string) string {
	if text == "" {
		return text
	}
	detection := a.detector.Detect(text)
	if len(detection.Matches) == 0 {
		return text
	}

	// Replace back to front so earlier spans keep their byte offsets.
	matches := detection.Matches
	sort.Slice(matches, func(i, j int) bool { return matches[i].Start > matches[j].Start })

	var b strings.Builder
	out := text
	for _, m := range matches {
		placeholder := a.placeholderFor(m.Type, m.Value)
		b.Reset()
		b.WriteString(out[:m.Start])
		b.WriteString(placeholder)
		b.WriteString(out[m.End:])
		out = b.String()
	}
	return out
}

// Deanonymize restores original values for every known placeholder in text.
// Unknown placeholders are left untouched; ScrubPlaceholders handles those
// at the output boundary.
func (a *Anonymizer) Deanonymize(text string) string {
	if len(a.byPlaceholder) == 0 || text == "" {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(ph string) string {
		if value, ok := a.byPlaceholder[ph]; ok {
			return value
		}
		return ph
	})
}

// HasReplacements reports whether any entity has been registered.
func (a *Anonymizer) HasReplacements() bool {
	return len(a.byValue) > 0
}

// MappingCount returns the number of distinct entities in the mapping.
// Safe for audit logging.
func (a *Anonymizer) MappingCount() int {
	return len(a.byValue)
}

// placeholderFor returns the placeholder for value, creating and registering
// a new one on first sight of the value.
func (a *Anonymizer) placeholderFor(entityType, value string) string {
	if ph, ok := a.byValue[value]; ok {
		return ph
	}
	a.counters[entityType]++
	ph := fmt.Sprintf("[[%s_%d]]", strings.ToUpper(entityType), a.counters[entityType])
	a.byValue[value] = ph
	a.byPlaceholder[ph] = value
	return ph
}

// ScrubPlaceholders removes any placeholder-shaped token from text,
// replacing it with a neutral redaction marker. Applied to user-visible
// output after de-anonymization so a lost mapping never leaks internal
// placeholder syntax to the user.
func ScrubPlaceholders(text string) string {
	return placeholderRe.ReplaceAllString(text, "[REDACTED]")
}

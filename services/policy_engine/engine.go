// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package policy_engine provides regex-based PII and sensitive-content
// detection for the privacy classifier and the anonymizer.
package policy_engine

import (
	"fmt"

	"github.com/ParagrafAI/ParagrafLocal/services/policy_engine/enforcement"
	"gopkg.in/yaml.v3"
)

// PiiEngine serves as the main entry point for PII detection operations.
// It holds the state of the loaded rules and provides methods to scan text
// against those rules.
type PiiEngine struct {
	Classifiers []Classification
	Keywords    []KeywordPattern
}

// NewPiiEngine initializes a new instance of the PiiEngine.
//
// This function takes no arguments. It automatically loads the pattern
// definitions embedded in the binary via the enforcement package.
//
// It performs the following operations:
// 1. Unmarshals the embedded YAML data.
// 2. Compiles all regex patterns.
// 3. Sorts classifications by priority.
//
// Returns an error if the embedded YAML is malformed or contains invalid regex.
func NewPiiEngine() (*PiiEngine, error) {
	var patternFile PiiPatternFile
	if err := yaml.Unmarshal(enforcement.PiiDetectionPatterns, &patternFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded pattern file: %w", err)
	}

	// Compile the regex patterns for performance and sort by priority
	if err := patternFile.CompileRegexes(); err != nil {
		return nil, fmt.Errorf("failed to compile a regex %w", err)
	}

	// Sort the classifications from highest to lowest priority so that
	// overlapping spans are claimed by the more specific entity type
	// (e.g. a PESEL is never reported as part of a phone number).
	patternFile.SortByPriority()

	engine := &PiiEngine{
		Classifiers: patternFile.ClassificationPatterns,
		Keywords:    patternFile.SensitiveKeywords,
	}
	return engine, nil
}

// Detect performs a comprehensive scan of a string.
//
// It checks the text against every entity classification and every sensitive
// keyword, capturing the span and classification of each entity match.
// Overlapping spans are resolved by classification priority: once a span is
// claimed, lower-priority matches touching it are dropped.
//
// The returned matches carry the matched values; callers must treat them as
// the PII itself and never log or persist them.
func (e *PiiEngine) Detect(text string) DetectionResult {
	var result DetectionResult
	var claimed [][2]int

	for _, classifier := range e.Classifiers {
		for i, re := range classifier.CompiledPatterns {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				if overlapsAny(loc[0], loc[1], claimed) {
					continue
				}
				claimed = append(claimed, [2]int{loc[0], loc[1]})
				result.Matches = append(result.Matches, PiiMatch{
					Type:       classifier.Name,
					Start:      loc[0],
					End:        loc[1],
					Value:      text[loc[0]:loc[1]],
					PatternId:  classifier.Patterns[i].Id,
					Confidence: classifier.Patterns[i].Confidence,
				})
			}
		}
	}

	for _, kw := range e.Keywords {
		if kw.compiledPattern.MatchString(text) {
			result.SensitiveKeywordIds = append(result.SensitiveKeywordIds, kw.Id)
		}
	}

	return result
}

// ContainsSensitive performs a quick boolean check on a string.
//
// It short-circuits on the first entity or keyword match. This is the cheap
// path used for scanning conversation history, where per-match detail is
// not needed.
func (e *PiiEngine) ContainsSensitive(text string) bool {
	for _, classifier := range e.Classifiers {
		for _, re := range classifier.CompiledPatterns {
			if re.MatchString(text) {
				return true
			}
		}
	}
	for _, kw := range e.Keywords {
		if kw.compiledPattern.MatchString(text) {
			return true
		}
	}
	return false
}

// overlapsAny reports whether [start,end) intersects any claimed span.
func overlapsAny(start, end int, claimed [][2]int) bool {
	for _, span := range claimed {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}

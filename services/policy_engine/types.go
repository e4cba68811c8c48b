// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package policy_engine

import (
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

type ConfidenceLevel string

const (
	Low    ConfidenceLevel = "low"
	Medium ConfidenceLevel = "medium"
	High   ConfidenceLevel = "high"
)

// PiiPatternFile is the schema of the embedded pattern YAML.
//
// Classifications describe replaceable PII entities; SensitiveKeywords are
// flag-only subject-matter patterns that raise sensitivity without being
// candidates for anonymization.
type PiiPatternFile struct {
	ClassificationPatterns []Classification `yaml:"classifications"`
	SensitiveKeywords      []KeywordPattern `yaml:"sensitive_keywords"`
}

type Classification struct {
	Name             string           `yaml:"name"`
	Description      string           `yaml:"description"`
	Priority         int              `yaml:"priority"`
	Patterns         []Pattern        `yaml:"patterns"`
	CompiledPatterns []*regexp.Regexp `yaml:"-"`
}

type Pattern struct {
	Id              string          `yaml:"id"`
	Description     string          `yaml:"description"`
	Regex           string          `yaml:"regex"`
	Confidence      ConfidenceLevel `yaml:"confidence"`
	compiledPattern *regexp.Regexp  `yaml:"-"`
}

type KeywordPattern struct {
	Id              string         `yaml:"id"`
	Description     string         `yaml:"description"`
	Regex           string         `yaml:"regex"`
	compiledPattern *regexp.Regexp `yaml:"-"`
}

func (c *ConfidenceLevel) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	incomingConfidence := ConfidenceLevel(s)
	switch incomingConfidence {
	case High, Medium, Low:
		*c = incomingConfidence
		return nil
	default:
		return fmt.Errorf("invalid value for Confidence: %q", incomingConfidence)
	}
}

func (p *PiiPatternFile) CompileRegexes() error {
	for i := range p.ClassificationPatterns {
		for j := range p.ClassificationPatterns[i].Patterns {
			pattern := &p.ClassificationPatterns[i].Patterns[j]
			re, err := regexp.Compile(pattern.Regex)
			if err != nil {
				return fmt.Errorf("failed to compile the regex %s: %w", pattern.Regex, err)
			}
			p.ClassificationPatterns[i].CompiledPatterns = append(p.ClassificationPatterns[i].
				CompiledPatterns, re)
			pattern.compiledPattern = re
		}
	}
	for i := range p.SensitiveKeywords {
		kw := &p.SensitiveKeywords[i]
		re, err := regexp.Compile(kw.Regex)
		if err != nil {
			return fmt.Errorf("failed to compile the keyword regex %s: %w", kw.Regex, err)
		}
		kw.compiledPattern = re
	}
	return nil
}

func (p *PiiPatternFile) SortByPriority() {
	sort.Slice(p.ClassificationPatterns, func(i, j int) bool {
		return p.ClassificationPatterns[i].Priority > p.ClassificationPatterns[j].Priority
	})
}

// PiiMatch is one detected entity span within the scanned text.
type PiiMatch struct {
	// Type is the classification name ("pesel", "email", ...).
	Type string `json:"type"`

	// Start and End delimit the matched span (byte offsets, half-open).
	Start int `json:"start"`
	End   int `json:"end"`

	// Value is the matched text. Handle carefully: this is the PII itself.
	// Never log it and never place it in audit events.
	Value string `json:"-"`

	PatternId  string          `json:"pattern_id"`
	Confidence ConfidenceLevel `json:"confidence"`
}

// DetectionResult is the outcome of scanning one piece of text.
type DetectionResult struct {
	Matches             []PiiMatch `json:"matches"`
	SensitiveKeywordIds []string   `json:"sensitive_keyword_ids,omitempty"`
}

// HasPii reports whether any PII entity was matched.
func (r DetectionResult) HasPii() bool {
	return len(r.Matches) > 0
}

// HasSensitiveKeywords reports whether any subject-matter keyword matched.
func (r DetectionResult) HasSensitiveKeywords() bool {
	return len(r.SensitiveKeywordIds) > 0
}

// Types returns the sorted, de-duplicated classification names that matched.
// Safe for audit logging: names only, never values.
func (r DetectionResult) Types() []string {
	seen := make(map[string]struct{}, len(r.Matches))
	var types []string
	for _, m := range r.Matches {
		if _, ok := seen[m.Type]; !ok {
			seen[m.Type] = struct{}{}
			types = append(types, m.Type)
		}
	}
	sort.Strings(types)
	return types
}

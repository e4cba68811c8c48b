// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ToolCall is a tool invocation requested by the local model in its text
// output.
type ToolCall struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

// fencedBlockRe captures the body of a fenced code block, with or without a
// language tag.
var fencedBlockRe = regexp.MustCompile("(?s)```(?:[a-zA-Z0-9_-]*\n)?(.*?)```")

// ExtractToolCall finds a tool invocation in free-form model output.
//
// # Description
//
// The local model has no native tool calling; it is prompted to answer with
// a bare JSON object of the form {"tool": "...", "input": {...}} when it
// wants a tool. Extraction tries, in order:
//
//  1. The whole trimmed output as a JSON object.
//  2. Each fenced code block, first match wins.
//
// A candidate only counts when its "tool" value is one of the known names;
// prose that happens to contain braces, or JSON the model produced as part
// of an answer, falls through to being treated as plain text.
//
// # Outputs
//
//   - *ToolCall: the parsed call, nil when text is a plain answer.
//   - bool: whether a call was found.
func ExtractToolCall(text string, isKnownTool func(string) bool) (*ToolCall, bool) {
	trimmed := strings.TrimSpace(text)

	if call, ok := parseToolCall(trimmed, isKnownTool); ok {
		return call, true
	}

	for _, m := range fencedBlockRe.FindAllStringSubmatch(trimmed, -1) {
		if call, ok := parseToolCall(strings.TrimSpace(m[1]), isKnownTool); ok {
			return call, true
		}
	}
	return nil, false
}

func parseToolCall(candidate string, isKnownTool func(string) bool) (*ToolCall, bool) {
	if !strings.HasPrefix(candidate, "{") {
		return nil, false
	}
	var call ToolCall
	if err := json.Unmarshal([]byte(candidate), &call); err != nil {
		return nil, false
	}
	if call.Tool == "" || (isKnownTool != nil && !isKnownTool(call.Tool)) {
		return nil, false
	}
	if call.Input == nil {
		call.Input = make(map[string]any)
	}
	return &call, true
}

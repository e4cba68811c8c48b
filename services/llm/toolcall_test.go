// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownTools(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestExtractToolCall_BareObject(t *testing.T) {
	call, ok := ExtractToolCall(
		`{"tool": "court_fee", "input": {"claim_amount": 10000}}`,
		knownTools("court_fee"))

	require.True(t, ok)
	assert.Equal(t, "court_fee", call.Tool)
	assert.Equal(t, float64(10000), call.Input["claim_amount"])
}

func TestExtractToolCall_FencedBlock(t *testing.T) {
	text := "Sprawdzę to narzędziem.\n```json\n" +
		`{"tool": "get_case", "input": {"case_id": "case-1"}}` + "\n```\nChwileczkę."

	call, ok := ExtractToolCall(text, knownTools("get_case"))

	require.True(t, ok)
	assert.Equal(t, "get_case", call.Tool)
	assert.Equal(t, "case-1", call.Input["case_id"])
}

func TestExtractToolCall_BareObjectWinsOverFencedBlock(t *testing.T) {
	text := `{"tool": "court_fee", "input": {"claim_amount": 500}}`

	call, ok := ExtractToolCall(text, knownTools("court_fee", "get_case"))

	require.True(t, ok)
	assert.Equal(t, "court_fee", call.Tool)
}

func TestExtractToolCall_UnknownToolIsPlainText(t *testing.T) {
	_, ok := ExtractToolCall(
		`{"tool": "rm_rf", "input": {}}`, knownTools("court_fee"))
	assert.False(t, ok)
}

func TestExtractToolCall_PlainAnswers(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"prose", "Opłata sądowa wynosi 500 zł."},
		{"prose with braces", "Wzór: {kwota} * 5%"},
		{"json without tool key", `{"result": 500}`},
		{"empty", ""},
		{"fenced code that is not a call", "```go\nfmt.Println(\"hej\")\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractToolCall(tt.text, knownTools("court_fee"))
			assert.False(t, ok)
		})
	}
}

func TestExtractToolCall_MissingInputBecomesEmptyMap(t *testing.T) {
	call, ok := ExtractToolCall(`{"tool": "list_deadlines"}`, knownTools("list_deadlines"))

	require.True(t, ok)
	require.NotNil(t, call.Input)
	assert.Empty(t, call.Input)
}

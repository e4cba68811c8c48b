// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/privacy"
	"github.com/ParagrafAI/ParagrafLocal/services/policy_engine"
)

func TestScanReport_CleanText(t *testing.T) {
	engine, err := policy_engine.NewPiiEngine()
	require.NoError(t, err)

	text := "Ile wynosi opłata sądowa od 10000 zł?"
	report := scanReport(engine.Detect(text), text)
	assert.Equal(t, "No PII or sensitive keywords found.\n", report)
}

func TestScanReport_PiiFindingsWithoutValues(t *testing.T) {
	engine, err := policy_engine.NewPiiEngine()
	require.NoError(t, err)

	text := "PESEL klienta to 85010212345."
	result := engine.Detect(text)
	require.True(t, result.HasPii())

	report := scanReport(result, privacy.NewAnonymizer(engine).Anonymize(text))
	assert.Contains(t, report, "pesel")
	assert.Contains(t, report, "Anonymized preview:")
	assert.Contains(t, report, "[[PESEL_1]]")
	assert.NotContains(t, report, "85010212345",
		"findings must never echo the matched value")
}

func TestScanReport_SensitiveKeywords(t *testing.T) {
	engine, err := policy_engine.NewPiiEngine()
	require.NoError(t, err)

	result := engine.Detect("Mój klient wnosi o rozwód.")
	require.True(t, result.HasSensitiveKeywords())

	report := scanReport(result, "Mój klient wnosi o rozwód.")
	assert.Contains(t, report, "Sensitive legal-domain keywords are present.")
}

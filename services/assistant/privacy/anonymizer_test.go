// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParagrafAI/ParagrafLocal/services/policy_engine"
)

func newTestAnonymizer(t *testing.T) *Anonymizer {
	t.Helper()
	engine, err := policy_engine.NewPiiEngine()
	require.NoError(t, err)
	return NewAnonymizer(engine)
}

func TestAnonymize_ReplacesDetectedEntities(t *testing.T) {
	anon := newTestAnonymizer(t)

	got := anon.Anonymize("PESEL 85010212345, mail jan@example.com")

	assert.NotContains(t, got, "85010212345")
	assert.NotContains(t, got, "jan@example.com")
	assert.Contains(t, got, "[[PESEL_1]]")
	assert.Contains(t, got, "[[EMAIL_1]]")
	assert.Equal(t, 2, anon.MappingCount())
}

func TestAnonymize_SameValueGetsSamePlaceholder(t *testing.T) {
	anon := newTestAnonymizer(t)

	first := anon.Anonymize("numer 85010212345")
	second := anon.Anonymize("powtarzam: 85010212345")

	assert.Contains(t, first, "[[PESEL_1]]")
	assert.Contains(t, second, "[[PESEL_1]]")
	assert.Equal(t, 1, anon.MappingCount())
}

func TestAnonymize_DistinctValuesGetDistinctPlaceholders(t *testing.T) {
	anon := newTestAnonymizer(t)

	got := anon.Anonymize("maile: a@example.com oraz b@example.com")

	assert.Contains(t, got, "[[EMAIL_1]]")
	assert.Contains(t, got, "[[EMAIL_2]]")
}

func TestRoundTrip_DeanonymizeRestoresOriginals(t *testing.T) {
	anon := newTestAnonymizer(t)
	original := "Klient: jan.kowalski@example.com, PESEL 85010212345."

	redacted := anon.Anonymize(original)
	restored := anon.Deanonymize(redacted)

	assert.Equal(t, original, restored)
}

func TestDeanonymize_UnknownPlaceholderLeftForScrubbing(t *testing.T) {
	anon := newTestAnonymizer(t)
	anon.Anonymize("mail a@example.com")

	got := anon.Deanonymize("wynik: [[EMAIL_1]] i [[PESEL_9]]")

	assert.Contains(t, got, "a@example.com")
	assert.Contains(t, got, "[[PESEL_9]]")
}

func TestAnonymize_CleanTextUnchanged(t *testing.T) {
	anon := newTestAnonymizer(t)
	text := "Ile wynosi opłata sądowa od 10000 zł?"

	assert.Equal(t, text, anon.Anonymize(text))
	assert.False(t, anon.HasReplacements())
}

func TestScrubPlaceholders(t *testing.T) {
	got := ScrubPlaceholders("Dane: [[PESEL_1]] oraz [[EMAIL_12]] koniec")

	assert.Equal(t, "Dane: [REDACTED] oraz [REDACTED] koniec", got)
	assert.Equal(t, "bez zmian", ScrubPlaceholders("bez zmian"))
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type presenceStub map[string]bool

func (p presenceStub) IsModelPresent(_ context.Context, model string) bool {
	return p[model]
}

func TestRouter_Choose(t *testing.T) {
	router := NewRouter("bielik-11b", "bielik-1.5b")
	both := presenceStub{"bielik-11b": true, "bielik-1.5b": true}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"greeting", "Dzień dobry!", "bielik-1.5b"},
		{"fee question", "Ile wynosi opłata sądowa od pozwu o zapłatę 10000 zł?", "bielik-1.5b"},
		{"capability question", "Co potrafisz?", "bielik-1.5b"},
		{"article lookup", "Co mówi art. 118 kodeksu cywilnego?", "bielik-1.5b"},
		{"short fallback", "A termin przedawnienia?", "bielik-1.5b"},
		{"drafting", "Przygotuj pozew o zapłatę przeciwko spółce.", "bielik-11b"},
		{"analysis", "Przeanalizuj umowę najmu i wskaż ryzyka.", "bielik-11b"},
		{"short but complex", "Napisz apelację.", "bielik-11b"},
		{"long neutral", strings.Repeat("Opis stanu faktycznego sprawy. ", 20), "bielik-11b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, router.Choose(context.Background(), tt.text, both))
		})
	}
}

func TestRouter_SpeedModelNotPulled(t *testing.T) {
	router := NewRouter("bielik-11b", "bielik-1.5b")
	onlyMain := presenceStub{"bielik-11b": true}

	got := router.Choose(context.Background(), "Dzień dobry!", onlyMain)

	assert.Equal(t, "bielik-11b", got, "absent speed model falls back to main")
}

func TestRouter_NoSpeedModelConfigured(t *testing.T) {
	router := NewRouter("bielik-11b", "")

	got := router.Choose(context.Background(), "Dzień dobry!", presenceStub{})

	assert.Equal(t, "bielik-11b", got)
}

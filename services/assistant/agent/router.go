// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"context"
	"regexp"
	"unicode/utf8"
)

// shortMessageLimit is the length under which a message with no complexity
// signal goes to the speed model.
const shortMessageLimit = 160

// complexRe matches requests that need the full model: drafting, analysis,
// comparisons, multi-step legal work.
var complexRe = regexp.MustCompile(`(?i)\b(przygotuj|sporządź|sporzadz|napisz|zredaguj|opracuj|przeanalizuj|analiz\w*|porównaj|porownaj|oceń|ocen|zaopiniuj|pozew|apelacj\w*|zażalenie|zazalenie|umow[aęy]|pismo procesowe|strategi\w*|argumentacj\w*)\b`)

// simpleRe matches requests a small model answers well: greetings, fee and
// date arithmetic, capability questions, single-article lookups.
var simpleRe = regexp.MustCompile(`(?i)(^\s*(dzień dobry|dzien dobry|cześć|czesc|witam|hej)\b|\bopłat\w*|\boplat\w*|\boblicz\b|\bile wynosi\b|\bpolicz\b|\bco potrafisz\b|\bpomoc\b|\bart\.\s*\d+)`)

// ModelPresence answers whether a local model is pulled and usable.
type ModelPresence interface {
	IsModelPresent(ctx context.Context, model string) bool
}

// Router picks the local model for a turn.
//
// Routing is heuristic and deliberately cheap: pattern match plus length,
// no model call. The speed model is only chosen when the prober confirms it
// is actually pulled; otherwise everything goes to the main model.
type Router struct {
	mainModel  string
	speedModel string
}

// NewRouter builds a router over the two configured local models. An empty
// speedModel disables fast-path routing entirely.
func NewRouter(mainModel, speedModel string) *Router {
	return &Router{mainModel: mainModel, speedModel: speedModel}
}

// Choose returns the model name for the given user message.
func (r *Router) Choose(ctx context.Context, text string, presence ModelPresence) string {
	if r.speedModel == "" {
		return r.mainModel
	}

	wantSpeed := false
	switch {
	case complexRe.MatchString(text):
		// Complexity signals always win, even for short messages.
	case simpleRe.MatchString(text):
		wantSpeed = true
	case utf8.RuneCountInString(text) <= shortMessageLimit:
		wantSpeed = true
	}

	if wantSpeed && presence != nil && presence.IsModelPresent(ctx, r.speedModel) {
		return r.speedModel
	}
	return r.mainModel
}

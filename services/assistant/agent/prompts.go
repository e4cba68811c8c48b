// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
)

// basePersona is the assistant's standing instruction. English instructions
// with a Polish output requirement work better across both backends than
// fully Polish prompts.
const basePersona = `You are Paragraf, an assistant for a Polish lawyer running a small practice.
You help with case management, procedural deadlines, court fees and drafting.
Always answer in Polish. Be precise about legal deadlines and amounts; when
you are not certain, say so instead of guessing. You are not a replacement
for the lawyer's own judgment and you never give advice directly to their
clients.`

// buildSystemPrompt assembles the per-turn system prompt. When the session
// has an active case, its summary and the client identity are embedded so
// the model has working context. That embedding is exactly why an active
// case forces the conversation onto the protected path.
func buildSystemPrompt(ctx context.Context, sess *datatypes.Session, cases store.CaseStore) string {
	var b strings.Builder
	b.WriteString(basePersona)

	caseID := sess.Metadata.ActiveCaseID
	if caseID == "" || cases == nil {
		return b.String()
	}

	activeCase, err := cases.GetCase(ctx, caseID)
	if err != nil {
		// The classifier already treated the lookup failure as sensitive;
		// here it just means the prompt carries no case block.
		return b.String()
	}

	b.WriteString("\n\nActive case:\n")
	fmt.Fprintf(&b, "- id: %s\n- title: %s\n- type: %s\n- status: %s\n",
		activeCase.ID, activeCase.Title, activeCase.CaseType, activeCase.Status)
	if activeCase.Facts != "" {
		fmt.Fprintf(&b, "- facts: %s\n", activeCase.Facts)
	}
	if activeCase.ClientID != "" {
		if client, err := cases.GetClient(ctx, activeCase.ClientID); err == nil {
			fmt.Fprintf(&b, "- client: %s", client.Name)
			if client.Email != "" {
				fmt.Fprintf(&b, " (%s)", client.Email)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/tools"
)

// LocalAdapter drives a turn against the local Ollama backend.
//
// The local model has no native tool calling, so the adapter renders the
// tool catalog into the system prompt and parses JSON invocations back out
// of the model's text output. Tool results are fed back in as tool-role
// messages until the model produces a plain answer or the round cap hits.
type LocalAdapter struct {
	client *LocalClient
	model  string
	params GenerationParams
}

var _ ProviderAdapter = (*LocalAdapter)(nil)

// NewLocalAdapter binds a local client to one concrete model.
func NewLocalAdapter(client *LocalClient, model string) *LocalAdapter {
	temp := float32(0.2)
	return &LocalAdapter{
		client: client,
		model:  model,
		params: GenerationParams{Temperature: &temp},
	}
}

// Model reports which model this adapter drives.
func (a *LocalAdapter) Model() string {
	return a.model
}

func (a *LocalAdapter) RunTurn(ctx context.Context, systemPrompt string,
	history []datatypes.Message, exec ToolExecutor,
	sess *datatypes.Session) (TurnResult, error) {

	defs := exec.Definitions()
	known := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		known[d.Name] = struct{}{}
	}
	isKnown := func(name string) bool {
		_, ok := known[name]
		return ok
	}

	messages := make([]datatypes.Message, 0, len(history)+2+2*MaxToolRounds)
	messages = append(messages, datatypes.Message{
		Role:    datatypes.RoleSystem,
		Content: systemPrompt + "\n\n" + renderToolPrompt(defs),
	})
	messages = append(messages, history...)

	var result TurnResult
	for round := 0; round < MaxToolRounds; round++ {
		text, err := a.client.Chat(ctx, a.model, messages, a.params)
		if err != nil {
			return result, err
		}

		call, ok := ExtractToolCall(text, isKnown)
		if !ok {
			result.Text = text
			return result, nil
		}

		slog.Debug("Local model requested a tool",
			"model", a.model, "tool", call.Tool, "round", round+1)
		payload := exec.ExecuteTool(ctx, call.Tool, call.Input, sess)
		result.ToolCallsExecuted++

		messages = append(messages,
			datatypes.Message{Role: datatypes.RoleAssistant, Content: text},
			datatypes.Message{
				Role:    datatypes.RoleTool,
				Content: fmt.Sprintf("Wynik narzędzia %s:\n%s", call.Tool, payload),
			})
	}

	slog.Warn("Turn exhausted its tool budget", "model", a.model, "rounds", MaxToolRounds)
	result.Text = LimitReachedMessage
	return result, nil
}

// renderToolPrompt describes the tool protocol and catalog for a model
// without native tool support.
func renderToolPrompt(defs []tools.Definition) string {
	if len(defs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("You have access to the following tools. To call a tool, reply with ")
	b.WriteString("ONLY a JSON object of the form {\"tool\": \"<name>\", \"input\": {...}} ")
	b.WriteString("and nothing else. After receiving the tool result you may call another ")
	b.WriteString("tool or give the final answer in Polish.\n\nTools:\n")

	for _, def := range defs {
		fmt.Fprintf(&b, "- %s: %s\n", def.Name, def.Description)
		if len(def.Parameters) == 0 {
			continue
		}
		schema, err := json.Marshal(def.Parameters)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "  parameters: %s\n", schema)
	}
	return b.String()
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package llm provides the provider adapters for the assistant: a local
// Ollama backend and a cloud OpenAI-compatible backend, both driven through
// the same RunTurn contract so the orchestrator never cares which one it is
// talking to.
package llm

import (
	"context"
	"errors"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/tools"
)

// MaxToolRounds caps the tool loop inside a single conversation turn. When
// the cap is hit the turn ends with LimitReachedMessage instead of another
// model call.
const MaxToolRounds = 10

// LimitReachedMessage is returned to the user when a turn exhausts its tool
// budget without producing a final answer.
const LimitReachedMessage = "Nie udało mi się dokończyć tej operacji w limicie kroków. " +
	"Spróbuj zadać pytanie inaczej lub podzielić je na mniejsze części."

// Transport-level failures, distinguishable so the orchestrator can decide
// between degrading and refusing.
var (
	// ErrProviderUnreachable means the backend could not be contacted.
	ErrProviderUnreachable = errors.New("llm provider is unreachable")

	// ErrProviderTimeout means the backend did not answer in time.
	ErrProviderTimeout = errors.New("llm provider timed out")

	// ErrMalformedResponse means the backend answered with an unparsable body.
	ErrMalformedResponse = errors.New("llm provider returned a malformed response")
)

// GenerationParams tunes a single generation call. Nil fields use provider
// defaults.
type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopK        *int     `json:"top_k"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// ToolExecutor runs one tool call on behalf of an adapter and reports the
// payload string handed back to the model. The orchestrator supplies an
// implementation that layers anonymization around the real dispatcher when
// the turn runs in the cloud.
type ToolExecutor interface {
	// ExecuteTool runs the named tool and returns the model-facing payload.
	ExecuteTool(ctx context.Context, name string, input map[string]any,
		sess *datatypes.Session) string

	// Definitions lists the tools available to the model this turn.
	Definitions() []tools.Definition
}

// TurnResult is the outcome of one full conversation turn.
type TurnResult struct {
	// Text is the final assistant answer.
	Text string

	// ToolCallsExecuted counts the tool rounds consumed by the turn.
	ToolCallsExecuted int
}

// ProviderAdapter drives one model backend through a complete turn,
// including any intermediate tool calls.
type ProviderAdapter interface {
	RunTurn(ctx context.Context, systemPrompt string, history []datatypes.Message,
		exec ToolExecutor, sess *datatypes.Session) (TurnResult, error)
}

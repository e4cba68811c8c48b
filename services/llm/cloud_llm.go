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
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/tools"
)

var cloudTracer = otel.Tracer("paragraf.llm.cloud")

// CloudAdapter drives a turn against an OpenAI-compatible cloud backend
// using native structured tool calls.
//
// Everything that reaches this adapter has already passed the privacy
// classifier; when the decision was cloud_anonymized the orchestrator hands
// in pre-redacted prompts and an executor that re-redacts tool results.
type CloudAdapter struct {
	client *openai.Client
	model  string
}

var _ ProviderAdapter = (*CloudAdapter)(nil)

// NewCloudAdapter builds an adapter for the given API key and model. A
// custom baseURL supports OpenAI-compatible gateways; empty means the
// public endpoint.
func NewCloudAdapter(apiKey, baseURL, model string) *CloudAdapter {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &CloudAdapter{client: openai.NewClientWithConfig(config), model: model}
}

func (a *CloudAdapter) RunTurn(ctx context.Context, systemPrompt string,
	history []datatypes.Message, exec ToolExecutor,
	sess *datatypes.Session) (TurnResult, error) {

	ctx, span := cloudTracer.Start(ctx, "CloudAdapter.RunTurn")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", a.model))

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem, Content: systemPrompt,
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: m.Role, Content: m.Content,
		})
	}
	toolDefs := toOpenAITools(exec.Definitions())

	var result TurnResult
	for round := 0; round < MaxToolRounds; round++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    toolDefs,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result, classifyTransportError(err)
		}
		if len(resp.Choices) == 0 {
			return result, fmt.Errorf("%w: no choices in completion", ErrMalformedResponse)
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			result.Text = choice.Content
			return result, nil
		}

		messages = append(messages, choice)
		for _, call := range choice.ToolCalls {
			input, err := decodeToolArguments(call.Function.Arguments)
			if err != nil {
				slog.Warn("Cloud model produced unparsable tool arguments",
					"tool", call.Function.Name, "error", err)
			}
			payload := exec.ExecuteTool(ctx, call.Function.Name, input, sess)
			result.ToolCallsExecuted++
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    payload,
				ToolCallID: call.ID,
			})
		}
	}

	slog.Warn("Turn exhausted its tool budget", "model", a.model, "rounds", MaxToolRounds)
	result.Text = LimitReachedMessage
	return result, nil
}

// decodeToolArguments parses the arguments JSON; a broken payload becomes an
// empty input so the tool's own validation can answer the model.
func decodeToolArguments(raw string) (map[string]any, error) {
	input := make(map[string]any)
	if raw == "" {
		return input, nil
	}
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return make(map[string]any), errors.New("tool arguments are not a JSON object")
	}
	return input, nil
}

// toOpenAITools converts the registry definitions into the function schema
// the completions API expects.
func toOpenAITools(defs []tools.Definition) []openai.Tool {
	out := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		properties := make(map[string]any, len(def.Parameters))
		for name, param := range def.Parameters {
			prop := map[string]any{
				"type":        string(param.Type),
				"description": param.Description,
			}
			if len(param.Enum) > 0 {
				prop["enum"] = param.Enum
			}
			properties[name] = prop
		}
		schema := map[string]any{
			"type":       "object",
			"properties": properties,
		}
		if required := def.RequiredParams(); len(required) > 0 {
			schema["required"] = required
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  schema,
			},
		})
	}
	return out
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"context"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/privacy"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/tools"
	"github.com/ParagrafAI/ParagrafLocal/services/llm"
)

// dispatchExecutor is the plain executor for local turns: tool calls pass
// straight through to the dispatcher.
type dispatchExecutor struct {
	dispatcher *tools.Dispatcher
}

var _ llm.ToolExecutor = (*dispatchExecutor)(nil)

func (e *dispatchExecutor) ExecuteTool(ctx context.Context, name string,
	input map[string]any, sess *datatypes.Session) string {
	result := e.dispatcher.Execute(ctx, name, input, sess)
	return result.Payload()
}

func (e *dispatchExecutor) Definitions() []tools.Definition {
	return e.dispatcher.Definitions()
}

// anonymizingExecutor sits between a cloud turn and the dispatcher.
//
// The cloud model only ever sees placeholders, so its tool inputs may
// contain them; they are mapped back to real values before the tool runs
// against the store. The tool result flows the other way and is redacted
// again before returning to the model. Real data exists only inside this
// boundary.
type anonymizingExecutor struct {
	dispatcher *tools.Dispatcher
	anon       *privacy.Anonymizer
}

var _ llm.ToolExecutor = (*anonymizingExecutor)(nil)

func (e *anonymizingExecutor) ExecuteTool(ctx context.Context, name string,
	input map[string]any, sess *datatypes.Session) string {

	deanonymized, _ := e.deanonymizeValue(input).(map[string]any)
	result := e.dispatcher.Execute(ctx, name, deanonymized, sess)
	return e.anon.Anonymize(result.Payload())
}

func (e *anonymizingExecutor) Definitions() []tools.Definition {
	return e.dispatcher.Definitions()
}

// deanonymizeValue walks an arbitrary JSON-shaped value and restores
// placeholders in every string it finds.
func (e *anonymizingExecutor) deanonymizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return e.anon.Deanonymize(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = e.deanonymizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = e.deanonymizeValue(item)
		}
		return out
	default:
		return v
	}
}

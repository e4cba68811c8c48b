// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
)

var dispatcherTracer = otel.Tracer("paragraf.assistant.tools")

// TruncationMarker is appended to a tool payload that was cut at the size
// limit, so the model knows the data is incomplete.
const TruncationMarker = `... [wynik skrócony]`

// DefaultToolTimeout bounds a single tool execution.
const DefaultToolTimeout = 15 * time.Second

// Result is the outcome of one tool execution.
type Result struct {
	// Data is the successful result, JSON-marshalable. Nil on error.
	Data any

	// Err is a model-readable error description. Empty on success.
	Err string

	// Truncated is set when the payload was cut at the size limit.
	Truncated bool
}

// Payload renders the result as the JSON string handed back to the model.
// The shape is {"result": ...} or {"error": "..."}; payloads larger than
// datatypes.MaxToolResultBytes are truncated with a marker.
func (r *Result) Payload() string {
	var body []byte
	var err error
	if r.Err != "" {
		body, err = json.Marshal(map[string]string{"error": r.Err})
	} else {
		body, err = json.Marshal(map[string]any{"result": r.Data})
	}
	if err != nil {
		return `{"error":"wynik narzędzia nie mógł zostać zserializowany"}`
	}
	if len(body) > datatypes.MaxToolResultBytes {
		cut := datatypes.MaxToolResultBytes - len(TruncationMarker)
		// Do not split a multi-byte rune at the boundary.
		for cut > 0 && body[cut]&0xC0 == 0x80 {
			cut--
		}
		body = append(body[:cut], TruncationMarker...)
		r.Truncated = true
	}
	return string(body)
}

// Dispatcher routes tool calls from the provider adapters to the registered
// tool implementations.
//
// # Description
//
// The dispatcher is the trust boundary between model output and case data.
// It validates that the tool exists, bounds execution time, recovers panics,
// and makes sure store failures surface to the model as generic errors that
// leak no internal detail.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
}

// NewDispatcher builds a dispatcher over a registry populated with the
// standard toolset bound to the given store.
func NewDispatcher(cases store.CaseStore) (*Dispatcher, error) {
	registry := NewRegistry()
	standard := []Tool{
		&GetCaseTool{Cases: cases},
		&SearchCasesTool{Cases: cases},
		&ListDeadlinesTool{Cases: cases},
		&CreateDeadlineTool{Cases: cases},
		&AddCaseNoteTool{Cases: cases},
		&SetActiveCaseTool{Cases: cases},
		&CourtFeeTool{},
	}
	for _, t := range standard {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}
	return &Dispatcher{registry: registry, timeout: DefaultToolTimeout}, nil
}

// Definitions exposes the registered tool definitions for the adapters.
func (d *Dispatcher) Definitions() []Definition {
	return d.registry.Definitions()
}

// Execute runs one tool call and always returns a Result the model can
// consume; transport-level failure is expressed in Result.Err, never as a
// Go error, so a bad tool call cannot abort the conversation turn.
func (d *Dispatcher) Execute(ctx context.Context, name string, input map[string]any,
	sess *datatypes.Session) (result Result) {

	ctx, span := dispatcherTracer.Start(ctx, "tools.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", name))

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Tool execution panicked",
				"tool", name, "panic", r, "stack", string(debug.Stack()))
			result = Result{Err: fmt.Sprintf("narzędzie %q zgłosiło błąd wewnętrzny", name)}
		}
	}()

	tool, ok := d.registry.Get(name)
	if !ok {
		return Result{Err: fmt.Sprintf("nieznane narzędzie %q", name)}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	data, err := tool.Execute(ctx, input, sess)
	if err != nil {
		return Result{Err: describeToolError(name, err)}
	}
	return Result{Data: data}
}

// describeToolError maps an execution error onto a message safe to show the
// model. Validation errors pass through verbatim so the model can correct
// its call; store internals never do.
func describeToolError(name string, err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "nie znaleziono wskazanego rekordu"
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("narzędzie %q przekroczyło limit czasu", name)
	case isInputError(err):
		return err.Error()
	default:
		slog.Error("Tool execution failed", "tool", name, "error", err)
		return "wewnętrzny błąd magazynu danych, spróbuj ponownie później"
	}
}

// inputError marks validation failures that are safe to relay verbatim.
type inputError struct{ err error }

func (e inputError) Error() string { return e.err.Error() }
func (e inputError) Unwrap() error { return e.err }

func asInputError(err error) error {
	if err == nil {
		return nil
	}
	return inputError{err: err}
}

func isInputError(err error) bool {
	var ie inputError
	return errors.As(err, &ie)
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package tools provides the tool registry and execution framework for the
// assistant.
//
// Tools are the mechanism through which the model reads and mutates case
// data. Each tool is described by a Definition that both provider adapters
// consume: the cloud adapter converts it to a native function schema, the
// local adapter renders it into the system prompt.
//
// Thread Safety:
//
//	Registry and Dispatcher are safe for concurrent use after construction.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
)

// ParamType represents the type of a tool parameter.
type ParamType string

const (
	ParamTypeString ParamType = "string"
	ParamTypeNumber ParamType = "number"
	ParamTypeInt    ParamType = "integer"
	ParamTypeBool   ParamType = "boolean"
)

// ParamDef defines a single parameter for a tool.
type ParamDef struct {
	// Type is the parameter type.
	Type ParamType `json:"type"`

	// Description explains what the parameter is for. Written for the
	// model, in English, since both providers are prompted in English
	// with Polish output instructions.
	Description string `json:"description"`

	// Required indicates if the parameter must be provided.
	Required bool `json:"required"`

	// Enum restricts values to a set of options.
	Enum []string `json:"enum,omitempty"`
}

// Definition describes a tool's interface for the model.
type Definition struct {
	// Name is the unique identifier for the tool.
	Name string `json:"name"`

	// Description explains what the tool does.
	Description string `json:"description"`

	// Parameters defines the input parameters.
	Parameters map[string]ParamDef `json:"parameters"`

	// SideEffects indicates if the tool mutates case or session state.
	SideEffects bool `json:"side_effects"`
}

// RequiredParams returns the sorted names of required parameters.
func (d Definition) RequiredParams() []string {
	var required []string
	for name, param := range d.Parameters {
		if param.Required {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return required
}

// Tool is one executable capability exposed to the model.
//
// Execute receives the raw input map produced by the provider adapter and
// the session of the current conversation. Implementations must be safe for
// concurrent use and must return either a JSON-marshalable result or an
// error; they never panic by contract, and the dispatcher contains the
// blast radius if one does.
type Tool interface {
	Name() string
	Definition() Definition
	Execute(ctx context.Context, input map[string]any, sess *datatypes.Session) (any, error)
}

// Registry holds the set of registered tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Duplicate names are a programming error.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q is already registered", t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the sorted registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns all tool definitions, sorted by name, for handoff to
// a provider adapter.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

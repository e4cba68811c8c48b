// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
)

// =============================================================================
// get_case Tool
// =============================================================================

// GetCaseOutput is the structured result of a case lookup.
type GetCaseOutput struct {
	Case   datatypes.Case    `json:"case"`
	Client *datatypes.Client `json:"client,omitempty"`
}

// GetCaseTool returns a case record together with its client, when the
// client record still resolves.
type GetCaseTool struct {
	Cases store.CaseStore
}

var _ Tool = (*GetCaseTool)(nil)

func (t *GetCaseTool) Name() string { return "get_case" }

func (t *GetCaseTool) Definition() Definition {
	return Definition{
		Name:        t.Name(),
		Description: "Fetch a single case record by its id, including the client it belongs to.",
		Parameters: map[string]ParamDef{
			"case_id": {Type: ParamTypeString, Description: "The case identifier.", Required: true},
		},
	}
}

func (t *GetCaseTool) Execute(ctx context.Context, input map[string]any,
	_ *datatypes.Session) (any, error) {

	caseID, err := requiredString(input, "case_id")
	if err != nil {
		return nil, asInputError(err)
	}

	theCase, err := t.Cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	out := GetCaseOutput{Case: *theCase}
	if theCase.ClientID != "" {
		// A dangling client reference is not an error worth failing the
		// lookup for; the case data alone is still useful.
		if client, err := t.Cases.GetClient(ctx, theCase.ClientID); err == nil {
			out.Client = client
		}
	}
	return out, nil
}

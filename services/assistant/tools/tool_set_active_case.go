// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"errors"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
)

// =============================================================================
// set_active_case Tool
// =============================================================================

// SetActiveCaseOutput confirms the session context switch.
type SetActiveCaseOutput struct {
	CaseID string `json:"case_id"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// SetActiveCaseTool binds the conversation to one case. From the next turn
// on, the classifier treats the conversation as sensitive and the other
// tools default to this case.
//
// The case must exist; the tool verifies before mutating the session so a
// hallucinated id cannot poison the context.
type SetActiveCaseTool struct {
	Cases store.CaseStore
}

var _ Tool = (*SetActiveCaseTool)(nil)

func (t *SetActiveCaseTool) Name() string { return "set_active_case" }

func (t *SetActiveCaseTool) Definition() Definition {
	return Definition{
		Name:        t.Name(),
		Description: "Make one case the active context for this conversation. Pass an empty case_id to clear the active case.",
		Parameters: map[string]ParamDef{
			"case_id": {Type: ParamTypeString, Description: "The case to activate, or empty to clear."},
		},
		SideEffects: true,
	}
}

func (t *SetActiveCaseTool) Execute(ctx context.Context, input map[string]any,
	sess *datatypes.Session) (any, error) {

	if sess == nil {
		return nil, errors.New("no session in scope")
	}

	caseID, err := optionalString(input, "case_id", 128)
	if err != nil {
		return nil, asInputError(err)
	}

	if caseID == "" {
		sess.Metadata.ActiveCaseID = ""
		return SetActiveCaseOutput{Active: false}, nil
	}

	theCase, err := t.Cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	sess.Metadata.ActiveCaseID = theCase.ID
	return SetActiveCaseOutput{CaseID: theCase.ID, Title: theCase.Title, Active: true}, nil
}

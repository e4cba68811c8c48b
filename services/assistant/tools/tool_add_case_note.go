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
// add_case_note Tool
// =============================================================================

// AddCaseNoteOutput confirms a recorded note.
type AddCaseNoteOutput struct {
	NoteID string `json:"note_id"`
	CaseID string `json:"case_id"`
	Added  bool   `json:"added"`
}

// AddCaseNoteTool appends a free-text note to a case file.
type AddCaseNoteTool struct {
	Cases store.CaseStore
}

var _ Tool = (*AddCaseNoteTool)(nil)

func (t *AddCaseNoteTool) Name() string { return "add_case_note" }

func (t *AddCaseNoteTool) Definition() Definition {
	return Definition{
		Name:        t.Name(),
		Description: "Append a note to a case file. Defaults to the active case when case_id is omitted.",
		Parameters: map[string]ParamDef{
			"case_id": {Type: ParamTypeString, Description: "The case to attach the note to. Defaults to the active case."},
			"body":    {Type: ParamTypeString, Description: "The note text.", Required: true},
		},
		SideEffects: true,
	}
}

func (t *AddCaseNoteTool) Execute(ctx context.Context, input map[string]any,
	sess *datatypes.Session) (any, error) {

	caseID, err := optionalString(input, "case_id", 128)
	if err != nil {
		return nil, asInputError(err)
	}
	if caseID == "" && sess != nil {
		caseID = sess.Metadata.ActiveCaseID
	}
	if caseID == "" {
		return nil, asInputError(errors.New("no case_id given and no active case is set"))
	}

	body, err := requiredString(input, "body")
	if err != nil {
		return nil, asInputError(err)
	}
	if len(body) > datatypes.MaxToolResultBytes {
		return nil, asInputError(errors.New("note body is too long"))
	}

	note := &datatypes.CaseNote{CaseID: caseID, Body: body}
	if err := t.Cases.AddCaseNote(ctx, note); err != nil {
		return nil, err
	}
	return AddCaseNoteOutput{NoteID: note.ID, CaseID: caseID, Added: true}, nil
}

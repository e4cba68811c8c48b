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
// create_deadline Tool
// =============================================================================

// CreateDeadlineOutput confirms a created deadline.
type CreateDeadlineOutput struct {
	Deadline datatypes.Deadline `json:"deadline"`
	Created  bool               `json:"created"`
}

// CreateDeadlineTool records a new procedural deadline on a case.
type CreateDeadlineTool struct {
	Cases store.CaseStore
}

var _ Tool = (*CreateDeadlineTool)(nil)

func (t *CreateDeadlineTool) Name() string { return "create_deadline" }

func (t *CreateDeadlineTool) Definition() Definition {
	return Definition{
		Name:        t.Name(),
		Description: "Record a new procedural deadline on a case. Defaults to the active case when case_id is omitted.",
		Parameters: map[string]ParamDef{
			"case_id":              {Type: ParamTypeString, Description: "The case the deadline belongs to. Defaults to the active case."},
			"title":                {Type: ParamTypeString, Description: "Short description of the deadline.", Required: true},
			"due_date":             {Type: ParamTypeString, Description: "Due date in YYYY-MM-DD format.", Required: true},
			"reminder_days_before": {Type: ParamTypeInt, Description: "How many days before the due date to start reminding, default 3."},
		},
		SideEffects: true,
	}
}

func (t *CreateDeadlineTool) Execute(ctx context.Context, input map[string]any,
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

	title, err := requiredString(input, "title")
	if err != nil {
		return nil, asInputError(err)
	}
	dueDate, err := requiredDate(input, "due_date")
	if err != nil {
		return nil, asInputError(err)
	}
	reminderDays, err := optionalNumber(input, "reminder_days_before", 3, 0, 365)
	if err != nil {
		return nil, asInputError(err)
	}

	deadline := &datatypes.Deadline{
		CaseID:             caseID,
		Title:              title,
		DueDate:            dueDate,
		ReminderDaysBefore: int(reminderDays),
	}
	if err := t.Cases.CreateDeadline(ctx, deadline); err != nil {
		return nil, err
	}
	return CreateDeadlineOutput{Deadline: *deadline, Created: true}, nil
}

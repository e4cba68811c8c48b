// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"time"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
)

// =============================================================================
// list_deadlines Tool
// =============================================================================

// ListDeadlinesOutput is the structured result of a deadline listing.
type ListDeadlinesOutput struct {
	Count     int                  `json:"count"`
	Deadlines []datatypes.Deadline `json:"deadlines"`
}

// ListDeadlinesTool lists procedural deadlines, optionally scoped to a case
// or a time horizon. Without an explicit case_id it falls back to the
// session's active case; with neither it lists across all cases.
type ListDeadlinesTool struct {
	Cases store.CaseStore
}

var _ Tool = (*ListDeadlinesTool)(nil)

func (t *ListDeadlinesTool) Name() string { return "list_deadlines" }

func (t *ListDeadlinesTool) Definition() Definition {
	return Definition{
		Name:        t.Name(),
		Description: "List upcoming procedural deadlines, soonest first. Defaults to the active case when case_id is omitted.",
		Parameters: map[string]ParamDef{
			"case_id":           {Type: ParamTypeString, Description: "Restrict to one case. Defaults to the active case."},
			"days_ahead":        {Type: ParamTypeInt, Description: "Only deadlines due within this many days."},
			"include_completed": {Type: ParamTypeBool, Description: "Include completed deadlines, default false."},
			"all_cases":         {Type: ParamTypeBool, Description: "Ignore the active case and list across all cases."},
		},
	}
}

func (t *ListDeadlinesTool) Execute(ctx context.Context, input map[string]any,
	sess *datatypes.Session) (any, error) {

	caseID, err := optionalString(input, "case_id", 128)
	if err != nil {
		return nil, asInputError(err)
	}
	daysAhead, err := optionalNumber(input, "days_ahead", 0, 1, 3650)
	if err != nil {
		return nil, asInputError(err)
	}
	includeCompleted, err := optionalBool(input, "include_completed", false)
	if err != nil {
		return nil, asInputError(err)
	}
	allCases, err := optionalBool(input, "all_cases", false)
	if err != nil {
		return nil, asInputError(err)
	}

	if caseID == "" && !allCases && sess != nil {
		caseID = sess.Metadata.ActiveCaseID
	}

	filter := datatypes.DeadlineFilter{
		CaseID:           caseID,
		IncludeCompleted: includeCompleted,
	}
	if daysAhead > 0 {
		filter.DueBefore = time.Now().AddDate(0, 0, int(daysAhead))
	}

	deadlines, err := t.Cases.ListDeadlines(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ListDeadlinesOutput{Count: len(deadlines), Deadlines: deadlines}, nil
}

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
// search_cases Tool
// =============================================================================

// SearchCasesOutput is the structured result of a case search.
type SearchCasesOutput struct {
	Query string           `json:"query"`
	Count int              `json:"count"`
	Cases []datatypes.Case `json:"cases"`
}

// SearchCasesTool performs a substring search over case titles, facts and
// case types.
type SearchCasesTool struct {
	Cases store.CaseStore
}

var _ Tool = (*SearchCasesTool)(nil)

func (t *SearchCasesTool) Name() string { return "search_cases" }

func (t *SearchCasesTool) Definition() Definition {
	return Definition{
		Name:        t.Name(),
		Description: "Search cases by keyword across title, facts and case type. An empty query lists the most recent cases.",
		Parameters: map[string]ParamDef{
			"query": {Type: ParamTypeString, Description: "Keyword to search for."},
			"limit": {Type: ParamTypeInt, Description: "Maximum number of cases to return, default 10."},
		},
	}
}

func (t *SearchCasesTool) Execute(ctx context.Context, input map[string]any,
	_ *datatypes.Session) (any, error) {

	query, err := optionalString(input, "query", 512)
	if err != nil {
		return nil, asInputError(err)
	}
	limit, err := optionalNumber(input, "limit", 10, 1, 50)
	if err != nil {
		return nil, asInputError(err)
	}

	cases, err := t.Cases.SearchCases(ctx, query, int(limit))
	if err != nil {
		return nil, err
	}
	return SearchCasesOutput{Query: query, Count: len(cases), Cases: cases}, nil
}

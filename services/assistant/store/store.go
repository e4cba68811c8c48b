// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store defines the case-management persistence contract and its
// backends. The assistant tools only ever see the CaseStore interface; the
// concrete backend is chosen at service construction time.
package store

import (
	"context"
	"errors"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
)

// ErrNotFound is returned when the requested record does not exist.
// Tool handlers translate it into a user-facing "not found" payload rather
// than an internal error.
var ErrNotFound = errors.New("record not found")

// CaseStore is the persistence contract for cases, clients, deadlines and
// notes.
//
// All methods honor context cancellation. Implementations must be safe for
// concurrent use; the tool dispatcher calls them from per-session
// goroutines.
type CaseStore interface {
	// GetCase returns the case with the given id, or ErrNotFound.
	GetCase(ctx context.Context, id string) (*datatypes.Case, error)

	// GetClient returns the client with the given id, or ErrNotFound.
	GetClient(ctx context.Context, id string) (*datatypes.Client, error)

	// SearchCases returns up to limit cases whose title, facts or case type
	// match the query. An empty query lists the most recent cases.
	SearchCases(ctx context.Context, query string, limit int) ([]datatypes.Case, error)

	// ListDeadlines returns deadlines matching the filter, soonest first.
	ListDeadlines(ctx context.Context, filter datatypes.DeadlineFilter) ([]datatypes.Deadline, error)

	// CreateDeadline persists a new deadline. The id is assigned by the
	// store if empty.
	CreateDeadline(ctx context.Context, deadline *datatypes.Deadline) error

	// AddCaseNote appends a note to a case. The id and timestamp are
	// assigned by the store if empty.
	AddCaseNote(ctx context.Context, note *datatypes.CaseNote) error
}

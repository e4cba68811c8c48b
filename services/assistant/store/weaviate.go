// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
)

// Weaviate class names for the case-management schema.
const (
	classCase     = "LegalCase"
	classClient   = "LegalClient"
	classDeadline = "CaseDeadline"
	classNote     = "CaseNote"
)

// WeaviateStore is the production CaseStore backed by a Weaviate instance.
//
// Case records carry client PII, so the store is expected to point at a
// locally hosted Weaviate; nothing here ever leaves the deployment boundary.
type WeaviateStore struct {
	client *weaviate.Client
}

var _ CaseStore = (*WeaviateStore)(nil)

// NewWeaviateStore wraps an already-configured Weaviate client.
func NewWeaviateStore(client *weaviate.Client) *WeaviateStore {
	return &WeaviateStore{client: client}
}

// parseGraphQLResponse converts Weaviate's dynamic response payload into a
// typed struct via a marshal round trip.
func parseGraphQLResponse[T any](resp *models.GraphQLResponse) (*T, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil GraphQL response")
	}
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal GraphQL response data: %w", err)
	}
	var result T
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal into target type: %w", err)
	}
	return &result, nil
}

type caseRecord struct {
	CaseId      string `json:"case_id"`
	ClientId    string `json:"client_id"`
	Title       string `json:"title"`
	Facts       string `json:"facts"`
	CaseType    string `json:"case_type"`
	Status      string `json:"status"`
	PrivacyMode string `json:"privacy_mode"`
	CreatedAt   int64  `json:"created_at"`
}

func (r caseRecord) toCase() datatypes.Case {
	return datatypes.Case{
		ID:          r.CaseId,
		ClientID:    r.ClientId,
		Title:       r.Title,
		Facts:       r.Facts,
		CaseType:    r.CaseType,
		Status:      r.Status,
		PrivacyMode: datatypes.PrivacyMode(r.PrivacyMode),
		CreatedAt:   time.UnixMilli(r.CreatedAt),
	}
}

var caseFields = []graphql.Field{
	{Name: "case_id"}, {Name: "client_id"}, {Name: "title"}, {Name: "facts"},
	{Name: "case_type"}, {Name: "status"}, {Name: "privacy_mode"}, {Name: "created_at"},
}

func (s *WeaviateStore) GetCase(ctx context.Context, id string) (*datatypes.Case, error) {
	where := filters.Where().
		WithPath([]string{"case_id"}).
		WithOperator(filters.Equal).
		WithValueString(id)

	resp, err := s.client.GraphQL().Get().
		WithClassName(classCase).
		WithWhere(where).
		WithFields(caseFields...).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("error querying for case: %w", err)
	}

	parsed, err := parseGraphQLResponse[struct {
		Get struct {
			LegalCase []caseRecord `json:"LegalCase"`
		} `json:"Get"`
	}](resp)
	if err != nil {
		return nil, fmt.Errorf("error parsing case query response: %w", err)
	}
	if len(parsed.Get.LegalCase) == 0 {
		return nil, ErrNotFound
	}
	c := parsed.Get.LegalCase[0].toCase()
	return &c, nil
}

func (s *WeaviateStore) GetClient(ctx context.Context, id string) (*datatypes.Client, error) {
	where := filters.Where().
		WithPath([]string{"client_id"}).
		WithOperator(filters.Equal).
		WithValueString(id)

	resp, err := s.client.GraphQL().Get().
		WithClassName(classClient).
		WithWhere(where).
		WithFields(
			graphql.Field{Name: "client_id"},
			graphql.Field{Name: "name"},
			graphql.Field{Name: "email"},
			graphql.Field{Name: "phone"},
		).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("error querying for client: %w", err)
	}

	parsed, err := parseGraphQLResponse[struct {
		Get struct {
			LegalClient []struct {
				ClientId string `json:"client_id"`
				Name     string `json:"name"`
				Email    string `json:"email"`
				Phone    string `json:"phone"`
			} `json:"LegalClient"`
		} `json:"Get"`
	}](resp)
	if err != nil {
		return nil, fmt.Errorf("error parsing client query response: %w", err)
	}
	if len(parsed.Get.LegalClient) == 0 {
		return nil, ErrNotFound
	}
	rec := parsed.Get.LegalClient[0]
	return &datatypes.Client{
		ID:    rec.ClientId,
		Name:  rec.Name,
		Email: rec.Email,
		Phone: rec.Phone,
	}, nil
}

func (s *WeaviateStore) SearchCases(ctx context.Context, query string, limit int) ([]datatypes.Case, error) {
	if limit <= 0 {
		limit = 10
	}

	builder := s.client.GraphQL().Get().
		WithClassName(classCase).
		WithFields(caseFields...).
		WithLimit(limit)

	if query != "" {
		// Substring match across the descriptive fields; BM25 would need a
		// text2vec module we do not require of local deployments.
		pattern := "*" + query + "*"
		where := filters.Where().WithOperator(filters.Or).WithOperands([]*filters.WhereBuilder{
			filters.Where().WithPath([]string{"title"}).WithOperator(filters.Like).WithValueText(pattern),
			filters.Where().WithPath([]string{"facts"}).WithOperator(filters.Like).WithValueText(pattern),
			filters.Where().WithPath([]string{"case_type"}).WithOperator(filters.Like).WithValueText(pattern),
		})
		builder = builder.WithWhere(where)
	}

	resp, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("error searching cases: %w", err)
	}

	parsed, err := parseGraphQLResponse[struct {
		Get struct {
			LegalCase []caseRecord `json:"LegalCase"`
		} `json:"Get"`
	}](resp)
	if err != nil {
		return nil, fmt.Errorf("error parsing case search response: %w", err)
	}

	cases := make([]datatypes.Case, 0, len(parsed.Get.LegalCase))
	for _, rec := range parsed.Get.LegalCase {
		cases = append(cases, rec.toCase())
	}
	return cases, nil
}

func (s *WeaviateStore) ListDeadlines(ctx context.Context, filter datatypes.DeadlineFilter) ([]datatypes.Deadline, error) {
	var operands []*filters.WhereBuilder
	if filter.CaseID != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"case_id"}).
			WithOperator(filters.Equal).
			WithValueString(filter.CaseID))
	}
	if !filter.IncludeCompleted {
		operands = append(operands, filters.Where().
			WithPath([]string{"completed"}).
			WithOperator(filters.Equal).
			WithValueBoolean(false))
	}
	if !filter.DueBefore.IsZero() {
		operands = append(operands, filters.Where().
			WithPath([]string{"due_date"}).
			WithOperator(filters.LessThanEqual).
			WithValueInt(filter.DueBefore.UnixMilli()))
	}

	builder := s.client.GraphQL().Get().
		WithClassName(classDeadline).
		WithFields(
			graphql.Field{Name: "deadline_id"},
			graphql.Field{Name: "case_id"},
			graphql.Field{Name: "title"},
			graphql.Field{Name: "due_date"},
			graphql.Field{Name: "reminder_days_before"},
			graphql.Field{Name: "completed"},
		).
		WithSort(graphql.Sort{Path: []string{"due_date"}, Order: graphql.Asc}).
		WithLimit(200)

	if len(operands) == 1 {
		builder = builder.WithWhere(operands[0])
	} else if len(operands) > 1 {
		builder = builder.WithWhere(
			filters.Where().WithOperator(filters.And).WithOperands(operands))
	}

	resp, err := builder.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing deadlines: %w", err)
	}

	parsed, err := parseGraphQLResponse[struct {
		Get struct {
			CaseDeadline []struct {
				DeadlineId         string `json:"deadline_id"`
				CaseId             string `json:"case_id"`
				Title              string `json:"title"`
				DueDate            int64  `json:"due_date"`
				ReminderDaysBefore int    `json:"reminder_days_before"`
				Completed          bool   `json:"completed"`
			} `json:"CaseDeadline"`
		} `json:"Get"`
	}](resp)
	if err != nil {
		return nil, fmt.Errorf("error parsing deadline query response: %w", err)
	}

	deadlines := make([]datatypes.Deadline, 0, len(parsed.Get.CaseDeadline))
	for _, rec := range parsed.Get.CaseDeadline {
		deadlines = append(deadlines, datatypes.Deadline{
			ID:                 rec.DeadlineId,
			CaseID:             rec.CaseId,
			Title:              rec.Title,
			DueDate:            time.UnixMilli(rec.DueDate),
			ReminderDaysBefore: rec.ReminderDaysBefore,
			Completed:          rec.Completed,
		})
	}
	return deadlines, nil
}

func (s *WeaviateStore) CreateDeadline(ctx context.Context, deadline *datatypes.Deadline) error {
	if _, err := s.GetCase(ctx, deadline.CaseID); err != nil {
		return err
	}
	if deadline.ID == "" {
		deadline.ID = uuid.NewString()
	}

	_, err := s.client.Data().Creator().
		WithClassName(classDeadline).
		WithProperties(map[string]any{
			"deadline_id":          deadline.ID,
			"case_id":              deadline.CaseID,
			"title":                deadline.Title,
			"due_date":             deadline.DueDate.UnixMilli(),
			"reminder_days_before": deadline.ReminderDaysBefore,
			"completed":            deadline.Completed,
		}).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to save deadline: %w", err)
	}
	return nil
}

func (s *WeaviateStore) AddCaseNote(ctx context.Context, note *datatypes.CaseNote) error {
	if _, err := s.GetCase(ctx, note.CaseID); err != nil {
		return err
	}
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}

	_, err := s.client.Data().Creator().
		WithClassName(classNote).
		WithProperties(map[string]any{
			"note_id":    note.ID,
			"case_id":    note.CaseID,
			"body":       note.Body,
			"created_at": note.CreatedAt.UnixMilli(),
		}).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to save case note: %w", err)
	}
	return nil
}

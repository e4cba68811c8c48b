// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

func getCaseSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       classCase,
		Description: "A legal case handled by the practice.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "case_id", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Stable case identifier."},
			{Name: "client_id", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Identifier of the client this case belongs to."},
			{Name: "title", DataType: []string{"text"},
				Description: "Short case title."},
			{Name: "facts", DataType: []string{"text"},
				Description: "Factual summary of the case."},
			{Name: "case_type", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Case category, e.g. cywilna, karna, rodzinna."},
			{Name: "status", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Lifecycle status of the case."},
			{Name: "privacy_mode", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Per-case privacy override: auto, strict, or off."},
			{Name: "created_at", DataType: []string{"number"},
				Description: "Unix milliseconds when the case was created."},
		},
	}
}

func getClientSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       classClient,
		Description: "A client of the practice. Contains PII; local storage only.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "client_id", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Stable client identifier."},
			{Name: "name", DataType: []string{"text"},
				Description: "Full client name."},
			{Name: "email", DataType: []string{"text"},
				Description: "Contact email."},
			{Name: "phone", DataType: []string{"text"},
				Description: "Contact phone number."},
		},
	}
}

func getDeadlineSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       classDeadline,
		Description: "A procedural deadline attached to a case.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "deadline_id", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Stable deadline identifier."},
			{Name: "case_id", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Case this deadline belongs to."},
			{Name: "title", DataType: []string{"text"},
				Description: "What is due, e.g. odpowiedź na pozew."},
			{Name: "due_date", DataType: []string{"number"}, IndexFilterable: indexFilterable,
				Description: "Unix milliseconds of the due moment."},
			{Name: "reminder_days_before", DataType: []string{"int"},
				Description: "How many days before the due date reminders start."},
			{Name: "completed", DataType: []string{"boolean"}, IndexFilterable: indexFilterable,
				Description: "True once the obligation was fulfilled."},
		},
	}
}

func getNoteSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       classNote,
		Description: "A free-form note attached to a case.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "note_id", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Stable note identifier."},
			{Name: "case_id", DataType: []string{"text"}, IndexFilterable: indexFilterable,
				Description: "Case this note belongs to."},
			{Name: "body", DataType: []string{"text"},
				Description: "Note text."},
			{Name: "created_at", DataType: []string{"number"},
				Description: "Unix milliseconds when the note was written."},
		},
	}
}

// EnsureSchema creates any missing case-management classes. Existing
// classes are left untouched.
func EnsureSchema(ctx context.Context, client *weaviate.Client) error {
	schemaGetters := []func() *models.Class{
		getCaseSchema,
		getClientSchema,
		getDeadlineSchema,
		getNoteSchema,
	}

	for _, getSchema := range schemaGetters {
		class := getSchema()
		slog.Info("Checking schema", "class", class.Class)

		_, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(ctx)
		if err != nil {
			// The class getter errors when the class does not exist yet.
			slog.Info("Schema not found, creating it", "class", class.Class)
			if err := client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
				return fmt.Errorf("create schema for class %s: %w", class.Class, err)
			}
			slog.Info("Successfully created schema", "class", class.Class)
		} else {
			slog.Info("Schema already exists", "class", class.Class)
		}
	}
	return nil
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// =============================================================================
// Case, Client, Deadline
// =============================================================================

// Case is a legal matter tracked by the practice.
//
// Read-only to the orchestrator core. The optional PrivacyMode override, when
// set to strict, takes precedence over session and global settings.
type Case struct {
	ID          string      `json:"id"`
	ClientID    string      `json:"client_id"`
	Title       string      `json:"title"`
	Facts       string      `json:"facts,omitempty"`
	CaseType    string      `json:"case_type,omitempty"`
	Status      string      `json:"status,omitempty"`
	PrivacyMode PrivacyMode `json:"privacy_mode,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Client is the party a case is conducted for.
type Client struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Deadline is a dated obligation attached to a case.
type Deadline struct {
	ID     string `json:"id"`
	CaseID string `json:"case_id"`
	Title  string `json:"title"`

	// DueDate is when the obligation falls due.
	DueDate time.Time `json:"due_date"`

	// ReminderDaysBefore is how many days before DueDate the reminder fires.
	ReminderDaysBefore int `json:"reminder_days_before"`

	Completed bool `json:"completed"`
}

// ReminderAt returns the instant the pre-due reminder becomes eligible.
func (d *Deadline) ReminderAt() time.Time {
	return d.DueDate.AddDate(0, 0, -d.ReminderDaysBefore)
}

// DeadlineFilter narrows a deadline listing.
//
// Zero values are ignored; IncludeCompleted=false (the default) returns only
// incomplete deadlines.
type DeadlineFilter struct {
	CaseID           string
	IncludeCompleted bool
	DueBefore        time.Time
}

// CaseNote is a free-form note attached to a case by a tool invocation.
type CaseNote struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

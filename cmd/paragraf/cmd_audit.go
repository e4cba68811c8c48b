// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/audit"
)

func runAuditCommand(cmd *cobra.Command, args []string) {
	var resp struct {
		Events []audit.Event `json:"events"`
		Count  int           `json:"count"`
	}
	url := fmt.Sprintf("%s/v1/audit/events?limit=%d", getAssistantBaseURL(), maxItems)
	if err := getJSON(url, &resp); err != nil {
		log.Fatalf("Error: %v", err)
	}

	if resp.Count == 0 {
		fmt.Println("No audit events recorded.")
		return
	}

	for _, e := range resp.Events {
		line := fmt.Sprintf("%s  %-20s %-14s", e.Time.Format("2006-01-02 15:04:05"),
			e.Type, e.SessionKey)
		if e.Decision != "" {
			line += fmt.Sprintf("  %s/%s", e.Decision, e.Reason)
		}
		if e.Provider != "" && e.Provider != audit.ProviderNone {
			line += fmt.Sprintf("  via %s(%s)", e.Provider, e.Model)
		}
		if len(e.PiiTypes) > 0 {
			line += fmt.Sprintf("  pii=%v", e.PiiTypes)
		}
		if e.ErrorKind != "" {
			line += fmt.Sprintf("  error=%s", e.ErrorKind)
		}
		fmt.Println(line)
	}
}

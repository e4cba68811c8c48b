// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/privacy"
	"github.com/ParagrafAI/ParagrafLocal/services/policy_engine"
)

// runScanCommand detects Polish PII in a file or stdin. Runs entirely
// in-process; nothing is sent anywhere. Printed findings carry positions
// and types, never the matched values.
func runScanCommand(cmd *cobra.Command, args []string) {
	var content []byte
	var err error
	if len(args) > 0 {
		content, err = os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Error reading %s: %v", args[0], err)
		}
	} else {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("Error reading stdin: %v", err)
		}
	}

	engine, err := policy_engine.NewPiiEngine()
	if err != nil {
		log.Fatalf("Error initializing the PII engine: %v", err)
	}
	text := string(content)
	result := engine.Detect(text)

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			log.Fatalf("Error encoding findings: %v", err)
		}
		return
	}

	fmt.Print(scanReport(result, privacy.NewAnonymizer(engine).Anonymize(text)))
}

// scanReport renders the human-readable scan output. Findings show type
// and byte span only; the anonymized preview is the closest the output
// gets to the scanned content.
func scanReport(result policy_engine.DetectionResult, anonymized string) string {
	var b strings.Builder

	if !result.HasPii() && !result.HasSensitiveKeywords() {
		b.WriteString("No PII or sensitive keywords found.\n")
		return b.String()
	}

	if result.HasPii() {
		fmt.Fprintf(&b, "Found %d PII match(es): %v\n", len(result.Matches), result.Types())
		for _, m := range result.Matches {
			fmt.Fprintf(&b, "  - %-14s at byte %d-%d (pattern %s, confidence %s)\n",
				m.Type, m.Start, m.End, m.PatternId, m.Confidence)
		}
	}
	if result.HasSensitiveKeywords() {
		b.WriteString("Sensitive legal-domain keywords are present.\n")
	}

	b.WriteString("\nAnonymized preview:\n")
	b.WriteString(anonymized)
	b.WriteString("\n")
	return b.String()
}

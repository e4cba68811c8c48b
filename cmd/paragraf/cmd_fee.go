// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/tools"
)

// runFeeCommand computes the filing fee locally with the same tool the
// assistant exposes to its models.
func runFeeCommand(cmd *cobra.Command, args []string) {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		log.Fatalf("Error: %q is not a number", args[0])
	}

	tool := &tools.CourtFeeTool{}
	result, err := tool.Execute(context.Background(), map[string]any{
		"claim_amount": amount,
	}, nil)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	out := result.(tools.CourtFeeOutput)
	fmt.Printf("Wartość przedmiotu sporu: %d PLN\n", out.ClaimAmount)
	fmt.Printf("Opłata sądowa: %d PLN (%s)\n", out.Fee, out.Basis)
}

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
)

func runHealthCommand(cmd *cobra.Command, args []string) {
	var resp map[string]string
	if err := getJSON(getAssistantBaseURL()+"/health", &resp); err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("service:       %s\n", resp["status"])
	fmt.Printf("local backend: %s\n", resp["local_backend"])
	if resp["local_backend"] != "ok" {
		fmt.Println("\nSensitive conversations will be refused until the local model is back.")
	}
}

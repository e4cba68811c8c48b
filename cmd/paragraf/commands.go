// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	channel  string
	userID   string
	asJSON   bool
	maxItems int

	rootCmd = &cobra.Command{
		Use:   "paragraf",
		Short: "A cli for the Paragraf privacy-aware legal assistant",
		Long: `Paragraf is a chat assistant for a small Polish legal practice.
Sensitive case material stays on local models; only anonymized or
explicitly cleared content may reach a cloud provider.`,
	}

	// --- Chat ---
	chatCmd = &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session with the assistant",
		Run:   runChatCommand, // Defined in cmd_chat.go
	}
	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant a single question",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAskCommand, // Defined in cmd_chat.go
	}

	// --- Privacy ---
	scanCmd = &cobra.Command{
		Use:   "scan [file]",
		Short: "Scan a file (or stdin) for Polish PII without contacting any server",
		Run:   runScanCommand, // Defined in cmd_scan.go
	}

	// --- Utilities ---
	feeCmd = &cobra.Command{
		Use:   "fee [claim amount in PLN]",
		Short: "Calculate the court filing fee for a pecuniary claim",
		Args:  cobra.ExactArgs(1),
		Run:   runFeeCommand, // Defined in cmd_fee.go
	}
	healthCmd = &cobra.Command{
		Use:   "health",
		Short: "Check the assistant service and its local model backend",
		Run:   runHealthCommand, // Defined in cmd_health.go
	}
	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit events from the assistant service",
		Run:   runAuditCommand, // Defined in cmd_audit.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&channel, "channel", "cli",
		"Delivery channel for the session key")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "",
		"User identifier (defaults to the OS username)")

	scanCmd.Flags().BoolVar(&asJSON, "json", false,
		"Print findings as JSON")
	auditCmd.Flags().IntVar(&maxItems, "limit", 20,
		"Maximum number of audit events to show")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(feeCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(auditCmd)
}

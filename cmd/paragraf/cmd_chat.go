// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
)

func sendChatMessage(message string) (datatypes.ChatResponse, error) {
	var resp datatypes.ChatResponse
	err := postJSON(getAssistantBaseURL()+"/v1/chat", datatypes.ChatRequest{
		UserID:  resolveUserID(),
		Channel: channel,
		Message: message,
	}, &resp)
	return resp, err
}

func runAskCommand(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")
	fmt.Printf("Pytanie: %s\n---\n", question)

	resp, err := sendChatMessage(question)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	fmt.Println(resp.Reply)
}

func runChatCommand(cmd *cobra.Command, args []string) {
	fmt.Println("Paragraf — asystent prawny. Wpisz /quit aby zakończyć.")
	fmt.Printf("(service: %s, session: %s:%s)\n\n",
		getAssistantBaseURL(), channel, resolveUserID())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), datatypes.MaxMessageContentBytes)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			fmt.Println("Do zobaczenia.")
			return
		}

		resp, err := sendChatMessage(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Printf("\n%s\n\n", resp.Reply)
	}
}

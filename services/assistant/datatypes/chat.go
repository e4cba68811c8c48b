// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// This file contains chat message types and the HTTP request/response
// contracts for the gateway chat endpoints.
package datatypes

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Bounds
// =============================================================================

const (
	// MaxMessageContentBytes is the maximum size of a single inbound message.
	// Checked in bytes, not runes, to bound memory use.
	MaxMessageContentBytes = 32 * 1024 // 32KB

	// MaxToolResultBytes is the byte budget for a serialized tool result
	// before it is truncated with a visible marker. Bounds model context
	// growth during the tool loop.
	MaxToolResultBytes = 16 * 1024 // 16KB
)

// =============================================================================
// Message Roles
// =============================================================================

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Delivery channels. Each channel keeps its own session per user.
const (
	ChannelWeb      = "web"
	ChannelTelegram = "telegram"
	ChannelCLI      = "cli"
)

// Message is one turn of a conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// =============================================================================
// Shared Validator Instance
// =============================================================================

var chatValidate *validator.Validate

func init() {
	chatValidate = validator.New()
	_ = chatValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes enforces the MaxMessageContentBytes limit on string
// fields. Byte length, not rune count.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxMessageContentBytes
}

// =============================================================================
// Gateway Chat Contracts
// =============================================================================

// ChatRequest is the POST /v1/chat request body.
//
// # Validation
//
// Uses go-playground/validator:
//   - UserID: required
//   - Channel: required, one of web|telegram|cli
//   - Message: required, max 32KB (maxbytes)
type ChatRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Channel string `json:"channel" validate:"required,oneof=web telegram cli"`
	Message string `json:"message" validate:"required,maxbytes"`
}

// Validate checks the request against its declared constraints.
//
// Returns a wrapped validator error suitable for a 400 response body.
func (r *ChatRequest) Validate() error {
	if err := chatValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid chat request: %w", err)
	}
	return nil
}

// ChatResponse is the POST /v1/chat response body.
//
// Reply is empty when the model produced nothing to send; the handler maps
// that to 204 No Content.
type ChatResponse struct {
	SessionKey string `json:"session_key"`
	Reply      string `json:"reply"`
}

// PrivacyModeRequest is the PUT /v1/sessions/:key/privacy request body.
type PrivacyModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=auto strict off"`
}

// Validate checks the request against its declared constraints.
func (r *PrivacyModeRequest) Validate() error {
	if err := chatValidate.Struct(r); err != nil {
		return fmt.Errorf("invalid privacy mode request: %w", err)
	}
	return nil
}

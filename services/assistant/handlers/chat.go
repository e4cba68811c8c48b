// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the gin HTTP handlers for the assistant
// gateway.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/agent"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/sessions"
)

var chatTracer = otel.Tracer("paragraf.assistant.handlers")

// HandleChat processes one chat message synchronously.
//
// The turn runs inside the session manager's critical section, so two
// concurrent requests from the same user are serialized, not interleaved.
func HandleChat(mgr *sessions.Manager, orch *agent.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()

		var req datatypes.ChatRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var reply string
		err := mgr.With(req.Channel, req.UserID, func(sess *datatypes.Session) error {
			var turnErr error
			reply, turnErr = orch.HandleMessage(ctx, sess, req.Message)
			return turnErr
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Chat turn failed", "channel", req.Channel, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if reply == "" {
			c.Status(http.StatusNoContent)
			return
		}

		c.JSON(http.StatusOK, datatypes.ChatResponse{
			SessionKey: sessions.Key(req.Channel, req.UserID),
			Reply:      reply,
		})
	}
}

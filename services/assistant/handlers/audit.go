// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/audit"
)

const defaultAuditLimit = 50

// AuditReader lists recent audit events, newest first. Satisfied by
// audit.BadgerSink; a nil reader disables the endpoint.
type AuditReader interface {
	Recent(limit int) ([]audit.Event, error)
}

// ListAuditEvents returns the most recent audit events. Events carry
// decisions and PII type names only, never message or entity values, so
// this endpoint is safe to expose on the admin surface.
func ListAuditEvents(reader AuditReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reader == nil {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "audit log is not persisted"})
			return
		}

		limit := defaultAuditLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 1000 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 1000"})
				return
			}
			limit = n
		}

		events, err := reader.Recent(limit)
		if err != nil {
			slog.Error("Failed to read audit log", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
	}
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/audit"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/sessions"
)

// sessionView is the session state exposed over the API. Turn contents are
// deliberately absent; this is an admin view, not a transcript export.
type sessionView struct {
	SessionKey   string                `json:"session_key"`
	Channel      string                `json:"channel"`
	UserID       string                `json:"user_id"`
	TurnCount    int                   `json:"turn_count"`
	ActiveCaseID string                `json:"active_case_id,omitempty"`
	PrivacyMode  datatypes.PrivacyMode `json:"privacy_mode,omitempty"`
	UpdatedAt    string                `json:"updated_at"`
}

// GetSession returns metadata about one session.
func GetSession(mgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		channel, userID := c.Param("channel"), c.Param("userId")
		snapshot, ok := mgr.Snapshot(channel, userID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusOK, sessionView{
			SessionKey:   snapshot.Key,
			Channel:      snapshot.Channel,
			UserID:       snapshot.UserID,
			TurnCount:    len(snapshot.Turns),
			ActiveCaseID: snapshot.Metadata.ActiveCaseID,
			PrivacyMode:  snapshot.Metadata.PrivacyMode,
			UpdatedAt:    snapshot.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
}

// ResetSession drops a session's history and metadata.
func ResetSession(mgr *sessions.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		mgr.Reset(c.Param("channel"), c.Param("userId"))
		c.Status(http.StatusNoContent)
	}
}

// SetPrivacyMode changes the per-session privacy override. The change is
// audited; it shifts what may leave the machine from the next turn on.
func SetPrivacyMode(mgr *sessions.Manager, sink audit.Sink) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.PrivacyModeRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		channel, userID := c.Param("channel"), c.Param("userId")
		_ = mgr.With(channel, userID, func(sess *datatypes.Session) error {
			sess.Metadata.PrivacyMode = datatypes.PrivacyMode(req.Mode)
			return nil
		})
		sink.Record(c.Request.Context(), audit.Event{
			Type:       audit.EventPrivacyModeChange,
			SessionKey: sessions.Key(channel, userID),
			UserID:     userID,
			Detail:     req.Mode,
		})
		c.JSON(http.StatusOK, gin.H{"mode": req.Mode})
	}
}

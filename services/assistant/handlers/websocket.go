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
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/agent"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/sessions"
)

// WSRequest is one message from the browser client.
type WSRequest struct {
	Message string `json:"message"`
	// UserID is optional; anonymous clients get a per-connection identity.
	UserID string `json:"user_id,omitempty"`
}

// WSResponse is the reply for one turn.
type WSResponse struct {
	SessionKey string `json:"session_key"`
	Reply      string `json:"reply"`
	Error      string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  64 * 1024,
	WriteBufferSize: 64 * 1024,
}

func sendJSON(ws *websocket.Conn, v interface{}) error {
	err := ws.WriteJSON(v)
	if err != nil {
		slog.Warn("Failed to write WebSocket JSON", "error", err)
	}
	return err
}

// HandleChatWebSocket serves the web channel over a persistent connection.
// Each inbound message runs one orchestrator turn; the session lives in the
// same manager as the REST chat, so a user can switch transports mid-case.
func HandleChatWebSocket(mgr *sessions.Manager, orch *agent.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("Failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		connUserID := "anon-" + uuid.New().String()
		slog.Info("Websocket client connected", "userID", connUserID)

		if err := sendJSON(ws, map[string]interface{}{
			"action":  "session_created",
			"user_id": connUserID,
		}); err != nil {
			return
		}

		for {
			var req WSRequest
			if err := ws.ReadJSON(&req); err != nil {
				slog.Info("Websocket client disconnected", "error", err.Error())
				break
			}

			userID := req.UserID
			if userID == "" {
				userID = connUserID
			}
			if strings.TrimSpace(req.Message) == "" {
				if sendJSON(ws, WSResponse{Error: "empty message"}) != nil {
					return
				}
				continue
			}
			if len(req.Message) > datatypes.MaxMessageContentBytes {
				if sendJSON(ws, WSResponse{Error: "message too long"}) != nil {
					return
				}
				continue
			}

			ctx := c.Request.Context()
			var reply string
			turnErr := mgr.With(datatypes.ChannelWeb, userID, func(sess *datatypes.Session) error {
				var err error
				reply, err = orch.HandleMessage(ctx, sess, req.Message)
				return err
			})

			resp := WSResponse{SessionKey: sessions.Key(datatypes.ChannelWeb, userID)}
			if turnErr != nil {
				slog.Error("Websocket turn failed", "userID", userID, "error", turnErr)
				resp.Error = "internal error"
			} else {
				resp.Reply = reply
			}
			if sendJSON(ws, resp) != nil {
				return
			}
		}
	}
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package routes wires the assistant's HTTP surface onto a gin engine.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/agent"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/audit"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/handlers"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/sessions"
	"github.com/ParagrafAI/ParagrafLocal/services/llm"
)

// Deps carries everything the routes need. AuditReader may be nil when the
// audit sink has no persistent backend.
type Deps struct {
	Sessions    *sessions.Manager
	Orch        *agent.Orchestrator
	Prober      *llm.Prober
	AuditSink   audit.Sink
	AuditReader handlers.AuditReader
}

// SetupRoutes registers the full API:
//
//	GET  /health               - Liveness plus local backend status
//	GET  /metrics              - Prometheus scrape endpoint
//	POST /v1/chat              - One synchronous chat turn
//	GET  /v1/chat/ws           - WebSocket chat for the web channel
//	GET  /v1/audit/events      - Recent audit events (admin)
//	Session administration under /v1/sessions/:channel/:userId
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck(deps.Prober))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/chat", handlers.HandleChat(deps.Sessions, deps.Orch))
		v1.GET("/chat/ws", handlers.HandleChatWebSocket(deps.Sessions, deps.Orch))
		v1.GET("/audit/events", handlers.ListAuditEvents(deps.AuditReader))

		// Session administration routes
		sess := v1.Group("/sessions")
		{
			sess.GET("/:channel/:userId", handlers.GetSession(deps.Sessions))
			sess.DELETE("/:channel/:userId", handlers.ResetSession(deps.Sessions))
			sess.PUT("/:channel/:userId/privacy", handlers.SetPrivacyMode(deps.Sessions, deps.AuditSink))
		}
	}
}

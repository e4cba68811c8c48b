// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/agent"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/audit"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/privacy"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/sessions"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/tools"
	"github.com/ParagrafAI/ParagrafLocal/services/llm"
	"github.com/ParagrafAI/ParagrafLocal/services/policy_engine"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine, err := policy_engine.NewPiiEngine()
	require.NoError(t, err)
	cases := store.NewMemoryStore()
	dispatcher, err := tools.NewDispatcher(cases)
	require.NoError(t, err)
	prober := llm.NewProber("http://127.0.0.1:1")
	client := llm.NewLocalClientWithURL("http://127.0.0.1:1")
	orch := agent.New(agent.Config{
		LocalMainModel:    "bielik-11b",
		GlobalPrivacyMode: datatypes.PrivacyModeAuto,
	}, agent.Deps{
		Classifier: privacy.NewClassifier(engine),
		Detector:   engine,
		Cases:      cases,
		Dispatcher: dispatcher,
		Prober:     prober,
		Local: func(model string) llm.ProviderAdapter {
			return llm.NewLocalAdapter(client, model)
		},
	})

	router := gin.New()
	SetupRoutes(router, Deps{
		Sessions:  sessions.NewManager(),
		Orch:      orch,
		Prober:    prober,
		AuditSink: audit.SlogSink{},
	})
	return router
}

func TestSetupRoutes_RegistersEndpoints(t *testing.T) {
	router := testRouter(t)

	registered := map[string]bool{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /metrics",
		"POST /v1/chat",
		"GET /v1/chat/ws",
		"GET /v1/audit/events",
		"GET /v1/sessions/:channel/:userId",
		"DELETE /v1/sessions/:channel/:userId",
		"PUT /v1/sessions/:channel/:userId/privacy",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestSetupRoutes_HealthResponds(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "status")
}

func TestSetupRoutes_MetricsResponds(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRoutes_AuditWithoutReaderIsNotImplemented(t *testing.T) {
	router := testRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/audit/events", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

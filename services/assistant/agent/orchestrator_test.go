// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/audit"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/privacy"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/tools"
	"github.com/ParagrafAI/ParagrafLocal/services/llm"
	"github.com/ParagrafAI/ParagrafLocal/services/policy_engine"
)

// fakeAdapter is a scripted ProviderAdapter that records what it was given.
type fakeAdapter struct {
	mu           sync.Mutex
	calls        int
	model        string
	systemPrompt string
	history      []datatypes.Message
	reply        func(history []datatypes.Message) string
	err          error
}

func (f *fakeAdapter) RunTurn(_ context.Context, systemPrompt string,
	history []datatypes.Message, _ llm.ToolExecutor,
	_ *datatypes.Session) (llm.TurnResult, error) {

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.systemPrompt = systemPrompt
	f.history = append([]datatypes.Message(nil), history...)
	if f.err != nil {
		return llm.TurnResult{}, f.err
	}
	reply := "OK"
	if f.reply != nil {
		reply = f.reply(history)
	}
	return llm.TurnResult{Text: reply}, nil
}

// recordingSink captures audit events in memory.
type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Record(_ context.Context, e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) last(t *testing.T) audit.Event {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.events)
	return s.events[len(s.events)-1]
}

// localBackend fakes the ollama tags endpoint so the prober sees the given
// models as pulled.
func localBackend(t *testing.T, models ...string) *llm.Prober {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		parts := make([]string, len(models))
		for i, m := range models {
			parts[i] = `{"name":"` + m + `"}`
		}
		_, _ = w.Write([]byte(`{"models":[` + strings.Join(parts, ",") + `]}`))
	}))
	t.Cleanup(server.Close)
	return llm.NewProber(server.URL)
}

// downBackend returns a prober pointed at a closed server.
func downBackend(t *testing.T) *llm.Prober {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()
	return llm.NewProber(server.URL)
}

type fixture struct {
	orch   *Orchestrator
	sink   *recordingSink
	local  *fakeAdapter
	cloud  *fakeAdapter
	store  *store.MemoryStore
	models map[string]*fakeAdapter
}

func newFixture(t *testing.T, cfg Config, prober *llm.Prober, cloud *fakeAdapter) *fixture {
	t.Helper()
	engine, err := policy_engine.NewPiiEngine()
	require.NoError(t, err)

	memStore := store.NewMemoryStore()
	memStore.PutClient(datatypes.Client{ID: "client-1", Name: "Jan Kowalski"})
	memStore.PutCase(datatypes.Case{
		ID: "case-strict", ClientID: "client-1", Title: "Sprawa karna",
		PrivacyMode: datatypes.PrivacyModeStrict,
	})
	memStore.PutCase(datatypes.Case{
		ID: "case-auto", ClientID: "client-1", Title: "Sprawa cywilna",
		PrivacyMode: datatypes.PrivacyModeAuto,
	})

	dispatcher, err := tools.NewDispatcher(memStore)
	require.NoError(t, err)

	f := &fixture{
		sink:   &recordingSink{},
		local:  &fakeAdapter{},
		cloud:  cloud,
		store:  memStore,
		models: make(map[string]*fakeAdapter),
	}

	deps := Deps{
		Classifier: privacy.NewClassifier(engine),
		Detector:   engine,
		Cases:      memStore,
		Dispatcher: dispatcher,
		Prober:     prober,
		Local: func(model string) llm.ProviderAdapter {
			adapter, ok := f.models[model]
			if !ok {
				adapter = f.local
			}
			adapter.model = model
			return adapter
		},
		Audit: f.sink,
	}
	if cloud != nil {
		deps.Cloud = cloud
		deps.CloudModel = "gpt-4o"
	}
	f.orch = New(cfg, deps)
	return f
}

func defaultConfig() Config {
	return Config{
		LocalMainModel:    "bielik-11b",
		LocalSpeedModel:   "bielik-1.5b",
		GlobalPrivacyMode: datatypes.PrivacyModeAuto,
	}
}

func TestHandleMessage_CaseStrictLocalDownNeverTouchesCloud(t *testing.T) {
	cloud := &fakeAdapter{}
	f := newFixture(t, defaultConfig(), downBackend(t), cloud)

	sess := &datatypes.Session{Key: "web:l1", UserID: "l1", Channel: "web"}
	sess.Metadata.ActiveCaseID = "case-strict"

	reply, err := f.orch.HandleMessage(context.Background(), sess, "Jakie mamy terminy?")

	require.NoError(t, err)
	assert.Equal(t, MsgLocalRequired, reply)
	assert.Zero(t, cloud.calls, "strict case must never reach the cloud")

	event := f.sink.last(t)
	assert.Equal(t, audit.EventRefusal, event.Type)
	assert.Equal(t, "case_strict_mode", event.Reason)
	assert.Equal(t, audit.ProviderNone, event.Provider)
	assert.Empty(t, sess.Turns, "refused turns are not committed")
}

func TestHandleMessage_StrictModeNeverDegradesEvenWhenFlagAllows(t *testing.T) {
	cfg := defaultConfig()
	cfg.BlockCloudOnPii = false
	cloud := &fakeAdapter{}
	f := newFixture(t, cfg, downBackend(t), cloud)

	sess := &datatypes.Session{Key: "web:l1", UserID: "l1", Channel: "web"}
	sess.Metadata.PrivacyMode = datatypes.PrivacyModeStrict

	reply, err := f.orch.HandleMessage(context.Background(), sess, "Dzień dobry")

	require.NoError(t, err)
	assert.Equal(t, MsgLocalRequired, reply)
	assert.Zero(t, cloud.calls)
	assert.Equal(t, "strict_mode", f.sink.last(t).Reason)
}

func TestHandleMessage_PiiDegradesToAnonymizedCloudWhenAllowed(t *testing.T) {
	cfg := defaultConfig()
	cfg.BlockCloudOnPii = false
	cloud := &fakeAdapter{reply: func(history []datatypes.Message) string {
		// Echo the last user message so the test can verify both redaction
		// on the way out and restoration on the way back.
		return "Zanotowałem: " + history[len(history)-1].Content
	}}
	f := newFixture(t, cfg, downBackend(t), cloud)

	sess := &datatypes.Session{Key: "web:l1", UserID: "l1", Channel: "web"}
	reply, err := f.orch.HandleMessage(context.Background(), sess,
		"Klient ma PESEL 85010212345, co dalej?")

	require.NoError(t, err)
	require.Equal(t, 1, cloud.calls)
	for _, m := range cloud.history {
		assert.NotContains(t, m.Content, "85010212345",
			"raw PII must never reach the cloud adapter")
	}
	assert.Contains(t, reply, "85010212345", "the answer is de-anonymized for the user")

	event := f.sink.last(t)
	assert.Equal(t, audit.EventTurn, event.Type)
	assert.Equal(t, audit.ProviderCloud, event.Provider)
	assert.Contains(t, event.PiiTypes, "pesel")
	assert.GreaterOrEqual(t, event.AnonymizedEntities, 1)
}

func TestHandleMessage_BlockCloudOnPiiRefusesInstead(t *testing.T) {
	cfg := defaultConfig()
	cfg.BlockCloudOnPii = true
	cloud := &fakeAdapter{}
	f := newFixture(t, cfg, downBackend(t), cloud)

	sess := &datatypes.Session{Key: "web:l1", UserID: "l1", Channel: "web"}
	reply, err := f.orch.HandleMessage(context.Background(), sess,
		"Klient ma PESEL 85010212345, co dalej?")

	require.NoError(t, err)
	assert.Equal(t, MsgLocalRequired, reply)
	assert.Zero(t, cloud.calls)
}

func TestHandleMessage_PrivacyOffSkipsAnonymization(t *testing.T) {
	cloud := &fakeAdapter{}
	f := newFixture(t, defaultConfig(), downBackend(t), cloud)

	sess := &datatypes.Session{Key: "web:l1", UserID: "l1", Channel: "web"}
	sess.Metadata.PrivacyMode = datatypes.PrivacyModeOff

	_, err := f.orch.HandleMessage(context.Background(), sess,
		"Klient ma PESEL 85010212345, co dalej?")

	require.NoError(t, err)
	require.Equal(t, 1, cloud.calls)
	found := false
	for _, m := range cloud.history {
		if strings.Contains(m.Content, "85010212345") {
			found = true
		}
	}
	assert.True(t, found, "privacy off sends content verbatim")
}

func TestHandleMessage_LocalHappyPathRoutesToSpeedModel(t *testing.T) {
	f := newFixture(t, defaultConfig(), localBackend(t, "bielik-11b", "bielik-1.5b"), nil)
	speedAdapter := &fakeAdapter{reply: func([]datatypes.Message) string {
		return "Opłata sądowa wynosi 500 zł."
	}}
	f.models["bielik-1.5b"] = speedAdapter

	sess := &datatypes.Session{Key: "web:l1", UserID: "l1", Channel: "web"}
	sess.Metadata.PrivacyMode = datatypes.PrivacyModeStrict // keep the turn local

	reply, err := f.orch.HandleMessage(context.Background(), sess,
		"Ile wynosi opłata sądowa od pozwu o zapłatę 10000 zł?")

	require.NoError(t, err)
	assert.Equal(t, "Opłata sądowa wynosi 500 zł.", reply)
	assert.Equal(t, 1, speedAdapter.calls)
	assert.Equal(t, "bielik-1.5b", speedAdapter.model)

	require.Len(t, sess.Turns, 2, "successful turns are committed")
	assert.Equal(t, datatypes.RoleUser, sess.Turns[0].Role)

	event := f.sink.last(t)
	assert.Equal(t, audit.EventTurn, event.Type)
	assert.Equal(t, audit.ProviderLocal, event.Provider)
	assert.Equal(t, "bielik-1.5b", event.Model)
}

func TestHandleMessage_LocalMidFlightFailureDoesNotFallBackToCloud(t *testing.T) {
	cfg := defaultConfig()
	cfg.BlockCloudOnPii = false
	cloud := &fakeAdapter{}
	f := newFixture(t, cfg, localBackend(t, "bielik-11b"), cloud)
	f.local.err = llm.ErrProviderTimeout

	sess := &datatypes.Session{Key: "web:l1", UserID: "l1", Channel: "web"}
	reply, err := f.orch.HandleMessage(context.Background(), sess,
		"Klient ma PESEL 85010212345, co dalej?")

	require.NoError(t, err)
	assert.Equal(t, MsgLocalRequired, reply)
	assert.Zero(t, cloud.calls, "mid-flight failure must not retry on the cloud")
	assert.Equal(t, "timeout", f.sink.last(t).ErrorKind)
}

func TestHandleMessage_CleanConversationNoCloudRunsLocal(t *testing.T) {
	f := newFixture(t, defaultConfig(), localBackend(t, "bielik-11b"), nil)
	f.local.reply = func([]datatypes.Message) string { return "Mogę pomóc." }

	sess := &datatypes.Session{Key: "web:l1", UserID: "l1", Channel: "web"}
	reply, err := f.orch.HandleMessage(context.Background(), sess,
		"Czym się zajmujesz i jak możesz mi pomóc w kancelarii?")

	require.NoError(t, err)
	assert.Equal(t, "Mogę pomóc.", reply)
	assert.Equal(t, audit.ProviderLocal, f.sink.last(t).Provider)
}

func TestHandleMessage_ActiveCaseDegradesWithCaseContext(t *testing.T) {
	// An auto-mode case with a down local backend and permissive policy
	// degrades to the anonymized cloud path, with the case block still in
	// the system prompt.
	cfg := defaultConfig()
	cfg.BlockCloudOnPii = false
	cloud := &fakeAdapter{}
	f := newFixture(t, cfg, downBackend(t), cloud)

	sess := &datatypes.Session{Key: "web:l1", UserID: "l1", Channel: "web"}
	sess.Metadata.ActiveCaseID = "case-auto"

	_, err := f.orch.HandleMessage(context.Background(), sess, "Co dalej w tej sprawie?")

	require.NoError(t, err)
	require.Equal(t, 1, cloud.calls)
	assert.Contains(t, cloud.systemPrompt, "Sprawa cywilna",
		"non-PII case facts stay readable")
}

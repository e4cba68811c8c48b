// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package agent contains the privacy-aware orchestrator: the component that
// takes a classified message and decides which provider runs the turn, with
// what protection, and what the user sees when no acceptable provider is
// available.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/audit"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/observability"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/privacy"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/tools"
	"github.com/ParagrafAI/ParagrafLocal/services/llm"
)

var agentTracer = otel.Tracer("paragraf.assistant.agent")

// User-facing fallback messages. The protected-path message deliberately
// does not distinguish "local crashed mid-turn" from "local never answered";
// either way the content could not be handled acceptably.
const (
	// MsgLocalRequired is shown when sensitive content can only go local
	// and the local backend is unavailable or failed.
	MsgLocalRequired = "Ta rozmowa dotyczy danych wrażliwych i może być obsłużona " +
		"wyłącznie przez model lokalny, który jest w tej chwili niedostępny. " +
		"Spróbuj ponownie za kilka minut."

	// MsgNoProvider is shown when no backend at all can take the turn.
	MsgNoProvider = "Żaden model językowy nie jest w tej chwili dostępny. " +
		"Spróbuj ponownie później."
)

// Config carries the orchestrator policy knobs.
type Config struct {
	// LocalMainModel is the default local model.
	LocalMainModel string

	// LocalSpeedModel is the small local model for simple turns. Empty
	// disables fast-path routing.
	LocalSpeedModel string

	// GlobalPrivacyMode is the instance-wide default, overridable per
	// session.
	GlobalPrivacyMode datatypes.PrivacyMode

	// BlockCloudOnPii hard-blocks the cloud degradation path for turns
	// classified local because of detected PII. Strict modes are always
	// hard-blocked regardless of this flag.
	BlockCloudOnPii bool

	// HistoryWindow is how many recent turns are sent to the model.
	HistoryWindow int
}

// AdapterFactory produces a local adapter bound to one model name.
type AdapterFactory func(model string) llm.ProviderAdapter

// Deps are the orchestrator's collaborators.
type Deps struct {
	Classifier *privacy.Classifier
	Detector   privacy.Detector
	Cases      store.CaseStore
	Dispatcher *tools.Dispatcher
	Prober     *llm.Prober
	Local      AdapterFactory

	// Cloud is nil when no cloud provider is configured; the instance then
	// runs local-only.
	Cloud      llm.ProviderAdapter
	CloudModel string

	Audit audit.Sink
}

// Orchestrator routes classified messages to providers.
type Orchestrator struct {
	cfg    Config
	deps   Deps
	router *Router
}

// New builds an orchestrator. Audit defaults to the slog sink and the
// history window to the classifier's default when unset.
func New(cfg Config, deps Deps) *Orchestrator {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = privacy.DefaultHistoryWindow
	}
	if deps.Audit == nil {
		deps.Audit = audit.SlogSink{}
	}
	return &Orchestrator{
		cfg:    cfg,
		deps:   deps,
		router: NewRouter(cfg.LocalMainModel, cfg.LocalSpeedModel),
	}
}

// HandleMessage runs one conversation turn end to end: classify, route,
// execute, commit the turns to the session, audit.
//
// The returned string is always something the user can be shown; provider
// failures come back as polite Polish fallback messages, not errors. The
// error return is reserved for programming-level failures.
func (o *Orchestrator) HandleMessage(ctx context.Context, sess *datatypes.Session,
	text string) (string, error) {

	ctx, span := agentTracer.Start(ctx, "agent.HandleMessage")
	defer span.End()
	started := time.Now()

	classification := o.deps.Classifier.Classify(ctx, text, sess, o.deps.Cases,
		o.cfg.GlobalPrivacyMode)
	span.SetAttributes(
		attribute.String("privacy.decision", string(classification.Decision)),
		attribute.String("privacy.reason", string(classification.Reason)),
	)
	slog.Info("Turn classified",
		"session_key", sess.Key,
		"decision", classification.Decision,
		"reason", classification.Reason,
		"pii_types", classification.Detection.Types(),
	)

	switch classification.Decision {
	case datatypes.DecisionLocal:
		return o.runProtected(ctx, sess, text, classification, started)
	case datatypes.DecisionCloudAnonymized:
		return o.runCloudEligible(ctx, sess, text, classification, started)
	default:
		o.refuse(ctx, sess, classification, "")
		return MsgLocalRequired, nil
	}
}

// runProtected handles turns whose content must not reach the cloud in
// readable form.
//
// When the local backend is down, the single permitted degradation is
// cloud with forced anonymization, and only for plain PII detections with
// BlockCloudOnPii disabled. Strict mode and case-level strict mode never
// degrade; that asymmetry is the point of having two strictness levels.
func (o *Orchestrator) runProtected(ctx context.Context, sess *datatypes.Session,
	text string, classification privacy.Classification, started time.Time) (string, error) {

	if o.deps.Prober.IsUp(ctx) {
		model := o.router.Choose(ctx, text, o.deps.Prober)
		reply, toolCalls, err := o.runLocal(ctx, sess, text, model)
		if err != nil {
			// A mid-turn local failure on the protected path ends the turn.
			// Retrying against the cloud would defeat the classification.
			slog.Error("Local turn failed on the protected path",
				"session_key", sess.Key, "model", model, "error", err)
			o.refuse(ctx, sess, classification, errorKind(err))
			return MsgLocalRequired, nil
		}
		o.commit(sess, text, reply)
		o.auditTurn(ctx, sess, classification, audit.ProviderLocal, model, toolCalls, 0)
		observability.RecordTurn(audit.ProviderLocal, string(classification.Reason),
			toolCalls, time.Since(started))
		return reply, nil
	}

	canDegrade := classification.Reason == datatypes.ReasonPiiDetected &&
		!o.cfg.BlockCloudOnPii && o.deps.Cloud != nil
	if canDegrade {
		slog.Warn("Local backend down, degrading to anonymized cloud",
			"session_key", sess.Key, "reason", classification.Reason)
		return o.runCloud(ctx, sess, text, classification, true, started)
	}

	o.refuse(ctx, sess, classification, "local_unavailable")
	return MsgLocalRequired, nil
}

// runCloudEligible handles turns the classifier cleared for the cloud.
// Without a configured cloud provider the turn runs locally without the
// protected-path restrictions.
func (o *Orchestrator) runCloudEligible(ctx context.Context, sess *datatypes.Session,
	text string, classification privacy.Classification, started time.Time) (string, error) {

	if o.deps.Cloud == nil {
		return o.runLocalUnprotected(ctx, sess, text, classification, started)
	}

	// Privacy off means the user explicitly waived redaction.
	anonymize := classification.Reason != datatypes.ReasonPrivacyOff
	return o.runCloud(ctx, sess, text, classification, anonymize, started)
}

// runLocalUnprotected runs a cloud-eligible turn on the local backend.
// Since nothing sensitive is at stake, a failed first attempt is retried
// once against the main model before giving up.
func (o *Orchestrator) runLocalUnprotected(ctx context.Context, sess *datatypes.Session,
	text string, classification privacy.Classification, started time.Time) (string, error) {

	if !o.deps.Prober.IsUp(ctx) {
		o.refuse(ctx, sess, classification, "local_unavailable")
		return MsgNoProvider, nil
	}

	model := o.router.Choose(ctx, text, o.deps.Prober)
	reply, toolCalls, err := o.runLocal(ctx, sess, text, model)
	if err != nil && model != o.cfg.LocalMainModel {
		slog.Warn("Speed model turn failed, retrying on the main model",
			"session_key", sess.Key, "error", err)
		model = o.cfg.LocalMainModel
		reply, toolCalls, err = o.runLocal(ctx, sess, text, model)
	}
	if err != nil {
		o.refuse(ctx, sess, classification, errorKind(err))
		return MsgNoProvider, nil
	}

	o.commit(sess, text, reply)
	o.auditTurn(ctx, sess, classification, audit.ProviderLocal, model, toolCalls, 0)
	observability.RecordTurn(audit.ProviderLocal, string(classification.Reason),
		toolCalls, time.Since(started))
	return reply, nil
}

// runLocal executes one turn against a local model with the plain executor.
func (o *Orchestrator) runLocal(ctx context.Context, sess *datatypes.Session,
	text, model string) (string, int, error) {

	history := append(sess.RecentTurns(o.cfg.HistoryWindow), datatypes.Message{
		Role: datatypes.RoleUser, Content: text,
	})
	exec := &dispatchExecutor{dispatcher: o.deps.Dispatcher}
	systemPrompt := buildSystemPrompt(ctx, sess, o.deps.Cases)

	result, err := o.deps.Local(model).RunTurn(ctx, systemPrompt, history, exec, sess)
	if err != nil {
		return "", 0, err
	}
	return result.Text, result.ToolCallsExecuted, nil
}

// runCloud executes one turn against the cloud provider, with or without
// the anonymization round trip.
func (o *Orchestrator) runCloud(ctx context.Context, sess *datatypes.Session,
	text string, classification privacy.Classification, anonymize bool,
	started time.Time) (string, error) {

	systemPrompt := buildSystemPrompt(ctx, sess, o.deps.Cases)
	history := sess.RecentTurns(o.cfg.HistoryWindow)
	userContent := text

	var exec llm.ToolExecutor = &dispatchExecutor{dispatcher: o.deps.Dispatcher}
	var anon *privacy.Anonymizer
	if anonymize {
		anon = privacy.NewAnonymizer(o.deps.Detector)
		systemPrompt = anon.Anonymize(systemPrompt)
		for i := range history {
			history[i].Content = anon.Anonymize(history[i].Content)
		}
		userContent = anon.Anonymize(text)
		exec = &anonymizingExecutor{dispatcher: o.deps.Dispatcher, anon: anon}
	}
	history = append(history, datatypes.Message{
		Role: datatypes.RoleUser, Content: userContent,
	})

	result, err := o.deps.Cloud.RunTurn(ctx, systemPrompt, history, exec, sess)
	if err != nil {
		slog.Error("Cloud turn failed",
			"session_key", sess.Key, "model", o.deps.CloudModel, "error", err)
		o.refuse(ctx, sess, classification, errorKind(err))
		return MsgNoProvider, nil
	}

	answer := result.Text
	entities := 0
	if anon != nil {
		answer = anon.Deanonymize(answer)
		entities = anon.MappingCount()
		observability.RecordAnonymization(entities)
	}
	// A placeholder that survived de-anonymization has no mapping; it must
	// not leak internal syntax to the user.
	answer = privacy.ScrubPlaceholders(answer)

	o.commit(sess, text, answer)
	o.auditTurn(ctx, sess, classification, audit.ProviderCloud, o.deps.CloudModel,
		result.ToolCallsExecuted, entities)
	observability.RecordTurn(audit.ProviderCloud, string(classification.Reason),
		result.ToolCallsExecuted, time.Since(started))
	return answer, nil
}

// commit appends the user and assistant turns to the session. Always the
// original user text, never the anonymized variant; the session is local
// state and later classification passes need the real content.
func (o *Orchestrator) commit(sess *datatypes.Session, userText, answer string) {
	sess.AppendTurn(datatypes.RoleUser, userText)
	sess.AppendTurn(datatypes.RoleAssistant, answer)
}

func (o *Orchestrator) auditTurn(ctx context.Context, sess *datatypes.Session,
	classification privacy.Classification, provider, model string,
	toolCalls, entities int) {

	o.deps.Audit.Record(ctx, audit.Event{
		Type:               audit.EventTurn,
		SessionKey:         sess.Key,
		UserID:             sess.UserID,
		CaseID:             sess.Metadata.ActiveCaseID,
		Decision:           string(classification.Decision),
		Reason:             string(classification.Reason),
		PrivacyMode:        string(sess.Metadata.PrivacyMode),
		Provider:           provider,
		Model:              model,
		ToolCalls:          toolCalls,
		PiiTypes:           classification.Detection.Types(),
		PiiCount:           len(classification.Detection.Matches),
		AnonymizedEntities: entities,
	})
}

func (o *Orchestrator) refuse(ctx context.Context, sess *datatypes.Session,
	classification privacy.Classification, kind string) {

	o.deps.Audit.Record(ctx, audit.Event{
		Type:        audit.EventRefusal,
		SessionKey:  sess.Key,
		UserID:      sess.UserID,
		CaseID:      sess.Metadata.ActiveCaseID,
		Decision:    string(classification.Decision),
		Reason:      string(classification.Reason),
		PrivacyMode: string(sess.Metadata.PrivacyMode),
		Provider:    audit.ProviderNone,
		PiiTypes:    classification.Detection.Types(),
		PiiCount:    len(classification.Detection.Matches),
		ErrorKind:   kind,
	})
	observability.RecordRefusal(string(classification.Reason))
}

// errorKind maps provider errors onto audit categories.
func errorKind(err error) string {
	switch {
	case errors.Is(err, llm.ErrProviderTimeout):
		return "timeout"
	case errors.Is(err, llm.ErrProviderUnreachable):
		return "unreachable"
	case errors.Is(err, llm.ErrMalformedResponse):
		return "malformed_response"
	default:
		return "provider_error"
	}
}

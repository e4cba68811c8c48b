// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ParagrafAI/ParagrafLocal/pkg/logging"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/agent"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/audit"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/handlers"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/privacy"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/reminders"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/routes"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/sessions"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/store"
	"github.com/ParagrafAI/ParagrafLocal/services/assistant/tools"
	"github.com/ParagrafAI/ParagrafLocal/services/llm"
	"github.com/ParagrafAI/ParagrafLocal/services/policy_engine"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "paragraf-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("assistant-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// buildCaseStore picks Weaviate when WEAVIATE_SERVICE_URL points somewhere
// valid, otherwise an in-memory store. In-memory keeps the assistant usable
// for chat and court-fee questions without a database.
func buildCaseStore() store.CaseStore {
	weaviateURL := strings.Trim(os.Getenv("WEAVIATE_SERVICE_URL"), "\"' ")
	if weaviateURL == "" || !strings.Contains(weaviateURL, "http") {
		slog.Info("WEAVIATE_SERVICE_URL not set or empty. Running with the in-memory case store.")
		return store.NewMemoryStore()
	}

	parsedURL, err := url.Parse(weaviateURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		slog.Warn("WEAVIATE_SERVICE_URL is invalid. Running with the in-memory case store.",
			"url", weaviateURL, "error", err)
		return store.NewMemoryStore()
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   parsedURL.Host,
		Scheme: parsedURL.Scheme,
	})
	if err != nil {
		slog.Error("Failed to create Weaviate client, falling back to in-memory store", "error", err)
		return store.NewMemoryStore()
	}
	if err := store.EnsureSchema(context.Background(), client); err != nil {
		log.Fatalf("FATAL: Could not ensure the Weaviate schema: %v", err)
	}
	return store.NewWeaviateStore(client)
}

// buildAuditSink persists audit events in Badger when AUDIT_DB_PATH is set;
// otherwise events only reach the structured log.
func buildAuditSink() (audit.Sink, handlers.AuditReader) {
	path := os.Getenv("AUDIT_DB_PATH")
	if path == "" {
		slog.Info("AUDIT_DB_PATH not set. Audit events go to the structured log only.")
		return audit.SlogSink{}, nil
	}
	sink, err := audit.NewBadgerSink(path)
	if err != nil {
		log.Fatalf("FATAL: Could not open the audit store at %s: %v", path, err)
	}
	return sink, sink
}

func main() {
	port := os.Getenv("ASSISTANT_PORT")
	if port == "" {
		port = "12300"
	}

	// LOG_DIR additionally mirrors the stream into dated JSON files.
	logger := logging.New(logging.Config{
		Level:   logging.LevelInfo,
		JSON:    true,
		Service: "assistant",
		LogDir:  os.Getenv("LOG_DIR"),
	})
	defer func() {
		if err := logger.Close(); err != nil {
			slog.Error("Failed to close the logger", "error", err)
		}
	}()
	slog.SetDefault(logger.Slog())

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	piiEngine, err := policy_engine.NewPiiEngine()
	if err != nil {
		log.Fatalf("FATAL: Could not initialize the PII engine: %v", err)
	}

	cases := buildCaseStore()
	dispatcher, err := tools.NewDispatcher(cases)
	if err != nil {
		log.Fatalf("FATAL: Could not build the tool dispatcher: %v", err)
	}

	localClient, err := llm.NewLocalClient()
	if err != nil {
		log.Fatalf("FATAL: Could not configure the local LLM client: %v", err)
	}
	prober := llm.NewProber(localClient.BaseURL())

	mainModel := os.Getenv("LOCAL_MAIN_MODEL")
	if mainModel == "" {
		mainModel = "bielik-11b"
		slog.Warn("LOCAL_MAIN_MODEL is not set, defaulting to 'bielik-11b'")
	}
	speedModel := os.Getenv("LOCAL_SPEED_MODEL")

	var cloud llm.ProviderAdapter
	cloudModel := os.Getenv("CLOUD_MODEL")
	if cloudModel == "" {
		cloudModel = "gpt-4o-mini"
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cloud = llm.NewCloudAdapter(apiKey, os.Getenv("OPENAI_BASE_URL"), cloudModel)
		slog.Info("Cloud provider configured", "model", cloudModel)
	} else {
		slog.Info("OPENAI_API_KEY not set. Running local-only.")
	}

	globalMode := datatypes.PrivacyMode(os.Getenv("PRIVACY_MODE"))
	if !globalMode.Valid() {
		globalMode = datatypes.PrivacyModeAuto
	}

	auditSink, auditReader := buildAuditSink()
	defer func() {
		if err := auditSink.Close(); err != nil {
			slog.Error("Failed to close the audit sink", "error", err)
		}
	}()

	orch := agent.New(agent.Config{
		LocalMainModel:    mainModel,
		LocalSpeedModel:   speedModel,
		GlobalPrivacyMode: globalMode,
		BlockCloudOnPii:   os.Getenv("BLOCK_CLOUD_ON_PII") == "true",
	}, agent.Deps{
		Classifier: privacy.NewClassifier(piiEngine),
		Detector:   piiEngine,
		Cases:      cases,
		Dispatcher: dispatcher,
		Prober:     prober,
		Local: func(model string) llm.ProviderAdapter {
			return llm.NewLocalAdapter(localClient, model)
		},
		Cloud:      cloud,
		CloudModel: cloudModel,
		Audit:      auditSink,
	})

	// Deadline reminders land in the log until a delivery channel (Telegram
	// bot, mailer) is attached here.
	scheduler, err := reminders.StartDeadlineReminders(context.Background(), cases,
		func(_ context.Context, batch []reminders.Reminder) error {
			for _, r := range batch {
				slog.Info("Deadline reminder",
					"deadline_id", r.Deadline.ID,
					"case_id", r.Deadline.CaseID,
					"title", r.Deadline.Title,
					"due_date", r.Deadline.DueDate,
					"kind", r.Kind)
			}
			return nil
		}, auditSink)
	if err != nil {
		log.Fatalf("FATAL: Could not start the deadline reminder scheduler: %v", err)
	}
	defer scheduler.Stop()

	router := gin.Default()
	router.Use(otelgin.Middleware("assistant-service"))
	routes.SetupRoutes(router, routes.Deps{
		Sessions:    sessions.NewManager(),
		Orch:        orch,
		Prober:      prober,
		AuditSink:   auditSink,
		AuditReader: auditReader,
	})

	log.Println("Starting the assistant server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

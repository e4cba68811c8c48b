// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability holds the Prometheus metrics for the assistant.
// Counters carry decision and provider labels only; nothing here can ever
// hold message content.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paragraf_turns_total",
		Help: "Completed conversation turns by provider and decision reason",
	}, []string{"provider", "reason"})

	refusalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paragraf_refusals_total",
		Help: "Turns refused because no acceptable provider was available",
	}, []string{"reason"})

	turnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paragraf_turn_duration_seconds",
		Help:    "End-to-end turn latency including tool rounds",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"provider"})

	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paragraf_tool_calls_total",
		Help: "Tool rounds executed by provider",
	}, []string{"provider"})

	anonymizedEntities = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "paragraf_anonymized_entities",
		Help:    "Distinct entities redacted per cloud-bound request",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
	})

	remindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paragraf_deadline_reminders_sent_total",
		Help: "Deadline reminder notifications dispatched",
	})
)

// RecordTurn accounts one completed turn.
func RecordTurn(provider, reason string, toolCalls int, elapsed time.Duration) {
	turnsTotal.WithLabelValues(provider, reason).Inc()
	turnDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	if toolCalls > 0 {
		toolCallsTotal.WithLabelValues(provider).Add(float64(toolCalls))
	}
}

// RecordRefusal accounts a turn that ended in a refusal message.
func RecordRefusal(reason string) {
	refusalsTotal.WithLabelValues(reason).Inc()
}

// RecordAnonymization accounts the mapping size of one cloud request.
func RecordAnonymization(entities int) {
	anonymizedEntities.Observe(float64(entities))
}

// RecordReminders accounts dispatched deadline reminders.
func RecordReminders(count int) {
	remindersSent.Add(float64(count))
}

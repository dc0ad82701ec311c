// Package metrics exposes Prometheus instrumentation for the agent.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolExecutions counts tool executions by tool name and status.
	ToolExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hada",
		Name:      "tool_executions_total",
		Help:      "Number of tool executions by tool name and status.",
	}, []string{"tool", "status"})

	// ToolDuration observes tool execution time.
	ToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hada",
		Name:      "tool_duration_seconds",
		Help:      "Tool execution duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})

	// Turns counts completed chat turns by outcome.
	Turns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hada",
		Name:      "chat_turns_total",
		Help:      "Number of completed chat turns by outcome.",
	}, []string{"outcome"})

	// LLMRequests counts model calls by provider and status.
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hada",
		Name:      "llm_requests_total",
		Help:      "Number of model requests by provider and status.",
	}, []string{"provider", "status"})
)

// Turn outcomes.
const (
	OutcomeText         = "text"
	OutcomeFallback     = "fallback"
	OutcomeConfirmation = "confirmation_required"
	OutcomeTruncated    = "truncated"
	OutcomeError        = "error"
)

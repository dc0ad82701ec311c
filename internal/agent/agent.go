// Package agent implements the conversational diagnostic agent: a bounded
// tool-calling loop around the primary model, with a safety gate for
// device-affecting tools and a fallback narrator when the primary model is
// unavailable.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/audit"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/provider"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/tools"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxIterations bounds the tool-calling loop within one turn.
const MaxIterations = 10

// dangerousTools require explicit user confirmation: they affect physical
// devices or system state.
var dangerousTools = map[string]struct{}{
	"identify_device":        {},
	"restart_home_assistant": {},
	"entity_action":          {},
	"turn_on":                {},
	"turn_off":               {},
	"reload_core_config":     {},
}

const systemPrompt = `You are an expert Home Assistant diagnostic AI assistant.

You have access to the Home Assistant diagnostics server tools and markdown resources.

When users ask about their Home Assistant system:
- Call the available tools to gather accurate data before answering
- Combine multiple tools when needed for coverage (e.g., diagnose_system + audit_zigbee_mesh + battery_report)
- Explain issues and fixes in clear, user-friendly language
- Be concise but thorough

Core tools (always available):
- diagnose_system: Complete system health check
- audit_zigbee_mesh: Zigbee mesh analysis with health scoring
- find_orphan_entities: Find unused entities for cleanup
- detect_automation_conflicts: Find race conditions and loops
- battery_report: Battery health monitoring
- energy_consumption_report: Energy usage and cost analysis
- find_unavailable_entities / find_stale_entities: Availability and freshness checks
- list_entities / list_automations: Discovery helpers
- identify_device: Physical identify (flash/beep/toggle)
- get_repair_items / get_update_status / get_error_log / get_entity_statistics: Maintenance and diagnostics

You may also see additional tools exposed dynamically; feel free to call any that are declared.
When appropriate, use multiple tools to provide comprehensive diagnostics.`

// ToolInvocationRecord captures one executed tool call within a turn.
type ToolInvocationRecord struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args"`
	Result map[string]any `json:"result"`
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	// Text is the user-facing response.
	Text string `json:"text"`
	// ToolsUsed lists the tools executed this turn, in order.
	ToolsUsed []ToolInvocationRecord `json:"tools_used"`
	// FallbackUsed is true when the narrator produced the text.
	FallbackUsed bool `json:"fallback_used"`
	// Truncated is true when the iteration cap was reached.
	Truncated bool `json:"truncated"`
	// ConfirmationRequired is true when a dangerous tool halted the turn.
	ConfirmationRequired bool `json:"confirmation_required"`

	// primaryFailed marks turns that ended with a raw model error, with no
	// narration to soften it. Used for metrics only.
	primaryFailed bool
}

// Options configures an Agent. Primary and Narrator may each be nil.
type Options struct {
	Primary  provider.Provider
	Narrator provider.Narrator
	Registry *tools.Registry
	Audit    *audit.Logger
	Logger   zerolog.Logger
}

// Agent holds one conversation. Turns are serialized; Reset starts the
// conversation over.
type Agent struct {
	mu        sync.Mutex
	primary   provider.Provider
	narrator  provider.Narrator
	registry  *tools.Registry
	audit     *audit.Logger
	log       zerolog.Logger
	sessionID string
	history   []provider.Message
}

// New creates an agent with a fresh session.
func New(opts Options) *Agent {
	return &Agent{
		primary:   opts.Primary,
		narrator:  opts.Narrator,
		registry:  opts.Registry,
		audit:     opts.Audit,
		log:       opts.Logger,
		sessionID: uuid.NewString(),
	}
}

// SessionID returns the session identifier.
func (a *Agent) SessionID() string { return a.sessionID }

// Reset clears the transcript. A reset session is indistinguishable from a
// fresh one.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
	a.sessionID = uuid.NewString()
	a.log.Info().Str("session_id", a.sessionID).Msg("conversation reset")
}

// Chat runs one turn: the message goes to the primary model, requested tools
// are executed and fed back, and the loop repeats until the model answers in
// text or the iteration cap is hit. There is no per-call timeout; the
// iteration cap is the only bound.
func (a *Agent) Chat(ctx context.Context, message string) TurnResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	if a.audit != nil {
		_ = a.audit.LogUserMessage(message)
	}

	result := a.chatLocked(ctx, message)

	if a.audit != nil {
		_ = a.audit.LogTurnComplete(len(result.ToolsUsed), result.FallbackUsed, time.Since(start))
	}
	metrics.Turns.WithLabelValues(turnOutcome(result)).Inc()
	return result
}

func (a *Agent) chatLocked(ctx context.Context, message string) TurnResult {
	var records []ToolInvocationRecord

	if a.primary == nil {
		if a.narrator != nil {
			if text, err := a.explain(ctx, message, records, "primary model not configured or unavailable"); err == nil {
				return TurnResult{Text: text, ToolsUsed: records, FallbackUsed: true}
			}
		}
		return TurnResult{
			Text:      "Primary model not configured. Set gemini_api_key to enable full diagnostics.",
			ToolsUsed: records,
		}
	}

	a.history = append(a.history, provider.Message{Role: provider.RoleUser, Text: message})

	decls := a.registry.Declarations()
	for iteration := 0; iteration < MaxIterations; iteration++ {
		resp, err := a.primary.Chat(ctx, systemPrompt, a.history, decls)
		if err != nil {
			metrics.LLMRequests.WithLabelValues("primary", "error").Inc()
			return a.handlePrimaryError(ctx, message, records, err)
		}
		metrics.LLMRequests.WithLabelValues("primary", "ok").Inc()

		a.history = append(a.history, provider.Message{
			Role:      provider.RoleModel,
			Text:      resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		if len(resp.ToolCalls) == 0 {
			text := resp.Text
			if text == "" {
				text = "Analysis complete."
			}
			return TurnResult{Text: text, ToolsUsed: records}
		}

		var results []provider.ToolResult
		for _, call := range resp.ToolCalls {
			if _, dangerous := dangerousTools[call.Name]; dangerous {
				// Halt before executing; drop the pending tool-call
				// message so the transcript stays well-formed.
				a.history = a.history[:len(a.history)-1]
				if a.audit != nil {
					_ = a.audit.LogSafetyHalt(call.Name)
				}
				a.log.Warn().Str("tool", call.Name).Msg("dangerous tool halted pending confirmation")
				text := fmt.Sprintf("**Safety Confirmation Required**\n\nThe tool `%s` requires explicit user confirmation as it can affect physical devices or system state.\n\nPlease confirm if you want to proceed with this action.", call.Name)
				return TurnResult{
					Text:                 text,
					ToolsUsed:            records,
					ConfirmationRequired: true,
				}
			}

			toolStart := time.Now()
			if a.audit != nil {
				_ = a.audit.LogToolStart(call.Name, call.Args)
			}
			a.log.Info().Str("tool", call.Name).Msg("executing tool")

			payload := a.registry.Execute(ctx, call.Name, call.Args)

			status := "ok"
			if _, failed := payload["error"]; failed {
				status = "error"
			}
			metrics.ToolExecutions.WithLabelValues(call.Name, status).Inc()
			metrics.ToolDuration.WithLabelValues(call.Name).Observe(time.Since(toolStart).Seconds())
			if a.audit != nil {
				_ = a.audit.LogToolComplete(call.Name, time.Since(toolStart), payload)
			}

			records = append(records, ToolInvocationRecord{
				Name:   call.Name,
				Args:   call.Args,
				Result: payload,
			})
			results = append(results, provider.ToolResult{Name: call.Name, Result: payload})
		}

		// All of the iteration's results go back as one batched message.
		a.history = append(a.history, provider.Message{
			Role:        provider.RoleUser,
			ToolResults: results,
		})
	}

	return TurnResult{
		Text:      "Maximum function call iterations reached. Response may be incomplete.",
		ToolsUsed: records,
		Truncated: true,
	}
}

// handlePrimaryError prefers fallback narration, especially for quota-shaped
// failures; raw errors reach the user only when no narrator can help.
func (a *Agent) handlePrimaryError(ctx context.Context, message string, records []ToolInvocationRecord, err error) TurnResult {
	quota := provider.IsQuotaError(err)
	a.log.Error().Err(err).Bool("quota", quota).Msg("primary model request failed")
	if a.audit != nil {
		_ = a.audit.LogError(err)
	}

	if a.narrator != nil {
		reason := err.Error()
		if quota {
			reason = "primary model quota exceeded"
		}
		if text, nerr := a.explain(ctx, message, records, reason); nerr == nil {
			return TurnResult{Text: text, ToolsUsed: records, FallbackUsed: true}
		} else {
			a.log.Error().Err(nerr).Msg("fallback narration failed")
		}
	}

	if quota {
		return TurnResult{
			Text:          "Primary model quota exceeded. Please wait or upgrade your plan.",
			ToolsUsed:     records,
			primaryFailed: true,
		}
	}
	return TurnResult{
		Text:          fmt.Sprintf("Error: %v", err),
		ToolsUsed:     records,
		primaryFailed: true,
	}
}

// explain asks the narrator to summarize the gathered tool records.
func (a *Agent) explain(ctx context.Context, message string, records []ToolInvocationRecord, reason string) (string, error) {
	recordsJSON, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		recordsJSON = []byte("[]")
	}

	text, err := a.narrator.Explain(ctx, message, string(recordsJSON), reason)
	if err != nil {
		metrics.LLMRequests.WithLabelValues("narrator", "error").Inc()
		return "", err
	}
	metrics.LLMRequests.WithLabelValues("narrator", "ok").Inc()
	if a.audit != nil {
		_ = a.audit.LogFallback(reason)
	}
	return text, nil
}

func turnOutcome(r TurnResult) string {
	switch {
	case r.primaryFailed:
		return metrics.OutcomeError
	case r.ConfirmationRequired:
		return metrics.OutcomeConfirmation
	case r.Truncated:
		return metrics.OutcomeTruncated
	case r.FallbackUsed:
		return metrics.OutcomeFallback
	default:
		return metrics.OutcomeText
	}
}

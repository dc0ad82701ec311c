// Package provider defines the model-facing contracts: a tool-calling chat
// Provider for the primary model and a Narrator for fallback explanations.
package provider

import (
	"context"
	"strings"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks user messages and tool results fed back to the model.
	RoleUser Role = "user"
	// RoleModel marks model responses, including tool call requests.
	RoleModel Role = "model"
)

// ToolCall is a function call requested by the model.
type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolResult carries one executed tool's payload back to the model.
type ToolResult struct {
	Name   string         `json:"name"`
	Result map[string]any `json:"result"`
}

// Message is one turn in the conversation transcript.
type Message struct {
	Role        Role
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// Declaration describes one callable tool to the model. Parameters is a
// JSON-schema-shaped map.
type Declaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Response is the model's reply: final text, tool calls, or both.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// Provider is a tool-calling chat model.
type Provider interface {
	// Chat sends the transcript and tool declarations and returns the
	// model's next message.
	Chat(ctx context.Context, system string, history []Message, decls []Declaration) (*Response, error)
}

// Narrator turns already-gathered tool output into a user-facing explanation
// when the primary model is unavailable. It never calls tools.
type Narrator interface {
	Explain(ctx context.Context, userMessage, toolRecordsJSON, reason string) (string, error)
}

// IsQuotaError reports whether err looks like a rate or quota rejection.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "429")
}

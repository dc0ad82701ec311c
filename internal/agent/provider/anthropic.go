package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

const narratorSystemPrompt = "You are an expert Home Assistant diagnostic system. " +
	"Your only job is to convert tool outputs into clear, helpful explanations for a user. " +
	"Do NOT invent values. Use ONLY the JSON results provided. " +
	"If there are no tool results because the primary model was unavailable, " +
	"clearly state that and advise configuring the primary model for full diagnostics."

// AnthropicNarrator explains gathered tool results when the primary model
// fails. It performs no function calling.
type AnthropicNarrator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	log       zerolog.Logger
}

// NewAnthropicNarrator creates the fallback narrator.
func NewAnthropicNarrator(apiKey, model string, log zerolog.Logger) (*AnthropicNarrator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicNarrator{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: 1024,
		log:       log,
	}, nil
}

// Explain summarizes the tool records for the user, naming the reason the
// primary model could not answer.
func (n *AnthropicNarrator) Explain(ctx context.Context, userMessage, toolRecordsJSON, reason string) (string, error) {
	reasonText := "Primary model unavailable or failed."
	if reason != "" {
		reasonText = fmt.Sprintf("Primary model unavailable or failed. Reason: %s", reason)
	}

	content := fmt.Sprintf("User message:\n%s\n\n%s\n\nTool results (JSON):\n%s",
		userMessage, reasonText, toolRecordsJSON)

	n.log.Debug().Str("model", n.model).Msg("calling fallback narrator")

	resp, err := n.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(n.model),
		MaxTokens: n.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: narratorSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("narration request failed: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("narrator returned no text content")
	}
	return strings.Join(parts, "\n"), nil
}

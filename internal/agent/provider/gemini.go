package provider

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// GeminiProvider is the primary tool-calling model.
type GeminiProvider struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGemini creates a Gemini-backed provider.
func NewGemini(ctx context.Context, apiKey, model string, log zerolog.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: model, log: log}, nil
}

// Chat sends the transcript and declarations and returns the model's reply.
func (g *GeminiProvider) Chat(ctx context.Context, system string, history []Message, decls []Declaration) (*Response, error) {
	contents := convertMessages(history)

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.2)),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if len(decls) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: convertDeclarations(decls)}}
	}

	g.log.Debug().Int("messages", len(contents)).Int("tools", len(decls)).Msg("calling gemini")

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	out := &Response{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			if out.Text != "" {
				out.Text += "\n"
			}
			out.Text += part.Text
		}
		if part.FunctionCall != nil {
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}
	return out, nil
}

// convertMessages maps the transcript onto genai contents. Tool results ride
// in user-role messages as function responses, mirroring how the model's own
// function calls ride in model-role messages.
func convertMessages(history []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		var parts []*genai.Part
		if msg.Text != "" {
			parts = append(parts, &genai.Part{Text: msg.Text})
		}
		for _, tc := range msg.ToolCalls {
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Name,
					Args: tc.Args,
				},
			})
		}
		for _, tr := range msg.ToolResults {
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     tr.Name,
					Response: map[string]any{"result": tr.Result},
				},
			})
		}
		if len(parts) == 0 {
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  string(msg.Role),
			Parts: parts,
		})
	}
	return contents
}

func convertDeclarations(decls []Declaration) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, &genai.FunctionDeclaration{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  schemaFromMap(d.Parameters),
		})
	}
	return out
}

// schemaFromMap converts a JSON-schema-shaped map into a genai.Schema.
func schemaFromMap(m map[string]any) *genai.Schema {
	if m == nil {
		return &genai.Schema{Type: genai.TypeObject}
	}

	s := &genai.Schema{Type: typeFromString(m["type"])}

	if desc, ok := m["description"].(string); ok {
		s.Description = desc
	}
	if props, ok := m["properties"].(map[string]any); ok && len(props) > 0 {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if pm, ok := raw.(map[string]any); ok {
				s.Properties[name] = schemaFromMap(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = schemaFromMap(items)
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = req
	} else if raw, ok := m["required"].([]any); ok {
		for _, r := range raw {
			if name, ok := r.(string); ok {
				s.Required = append(s.Required, name)
			}
		}
	}
	return s
}

func typeFromString(v any) genai.Type {
	t, _ := v.(string)
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}

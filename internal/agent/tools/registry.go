// Package tools builds the tool surface the model sees and dispatches its
// calls onto the diagnostics backend.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/provider"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/bridge"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/knowledge"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/snapshot"
	"github.com/rs/zerolog"
)

// MaxToolResponseBytes bounds a single tool result. Larger payloads are
// truncated to prevent context overflow (~12,500 tokens at 4 chars/token).
const MaxToolResponseBytes = 50 * 1024

// historyToolName is excluded from snapshot recording so the history tool
// never snapshots itself.
const historyToolName = "query_diagnostic_history"

// executor runs one tool against the backend. Failures are structured error
// payloads, never Go errors.
type executor func(ctx context.Context, args map[string]any) map[string]any

// Options carries the registry's dependencies.
type Options struct {
	Backend   bridge.Backend
	Knowledge *knowledge.Index // nil when the feature is off
	Snapshots *snapshot.Log    // nil when the feature is off
	Logger    zerolog.Logger
}

// Registry holds tool declarations in a deterministic order and the
// executors behind them. Declarations are built in two passes: the static
// set first, then any backend tools discovered dynamically. The first
// registration of a name wins.
type Registry struct {
	decls     []provider.Declaration
	execs     map[string]executor
	backend   bridge.Backend
	snapshots *snapshot.Log
	log       zerolog.Logger
}

// NewRegistry builds the registry for the given backend.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		execs:     make(map[string]executor),
		backend:   opts.Backend,
		snapshots: opts.Snapshots,
		log:       opts.Logger,
	}

	r.registerStatic()
	if opts.Knowledge != nil && opts.Knowledge.Enabled() {
		r.register(provider.Declaration{
			Name:        "query_diagnostics_knowledge",
			Description: "Query the diagnostics knowledge base built from demo data and markdown resources.",
			Parameters: objectSchema(map[string]any{
				"question": map[string]any{"type": "string", "description": "Question to ask the knowledge base"},
			}, "question"),
		}, func(_ context.Context, args map[string]any) map[string]any {
			question, err := strArg(args, "question", "")
			if err != nil {
				return invalidArgs("query_diagnostics_knowledge", args, err)
			}
			return opts.Knowledge.Query(question)
		})
	}
	if opts.Snapshots != nil && opts.Snapshots.Enabled() {
		r.register(provider.Declaration{
			Name:        historyToolName,
			Description: "Retrieve saved diagnostic snapshots from this session's history.",
			Parameters:  objectSchema(nil),
		}, func(context.Context, map[string]any) map[string]any {
			return opts.Snapshots.Snapshots()
		})
	}

	// Dynamic pass: anything else the backend exposes gets a generic
	// declaration routed through the generic call path.
	for _, name := range opts.Backend.AvailableTools() {
		if _, exists := r.execs[name]; exists {
			continue
		}
		r.register(provider.Declaration{
			Name:        name,
			Description: fmt.Sprintf("Invoke diagnostics server tool '%s' (auto-generated).", name),
			Parameters:  objectSchema(nil),
		}, func(ctx context.Context, args map[string]any) map[string]any {
			return opts.Backend.CallTool(ctx, name, args)
		})
	}

	return r
}

func (r *Registry) register(decl provider.Declaration, exec executor) {
	if _, exists := r.execs[decl.Name]; exists {
		return
	}
	r.decls = append(r.decls, decl)
	r.execs[decl.Name] = exec
	r.log.Debug().Str("tool", decl.Name).Msg("registered tool")
}

// Declarations returns the tool declarations in registration order.
func (r *Registry) Declarations() []provider.Declaration {
	out := make([]provider.Declaration, len(r.decls))
	copy(out, r.decls)
	return out
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.decls))
	for _, d := range r.decls {
		names = append(names, d.Name)
	}
	return names
}

// Execute dispatches one tool call. Unknown names fall through to the
// backend's generic call path; when that also fails the result is a
// structured error naming the attempted tool and the known set. Successful
// results are snapshotted and size-bounded.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) map[string]any {
	if args == nil {
		args = map[string]any{}
	}

	exec, ok := r.execs[name]
	if !ok {
		r.log.Warn().Str("tool", name).Msg("model requested unregistered tool")
		payload := r.backend.CallTool(ctx, name, args)
		if errMsg, failed := payload["error"].(string); failed {
			return map[string]any{
				"error":           fmt.Sprintf("Unknown tool: %s. %s", name, errMsg),
				"available_tools": r.Names(),
			}
		}
		return truncateResult(payload)
	}

	result := exec(ctx, args)
	if result == nil {
		result = map[string]any{}
	}

	if r.snapshots != nil && name != historyToolName {
		r.snapshots.Save(name, args, result)
	}

	return truncateResult(result)
}

// truncateResult replaces oversized payloads with a truncation marker that
// keeps a prefix of the serialized data.
func truncateResult(result map[string]any) map[string]any {
	raw, err := json.Marshal(result)
	if err != nil || len(raw) <= MaxToolResponseBytes {
		return result
	}

	partial := string(raw)
	keep := MaxToolResponseBytes * 80 / 100
	if len(partial) > keep {
		partial = partial[:keep]
	}

	return map[string]any{
		"_truncated":       true,
		"_original_bytes":  len(raw),
		"_truncated_bytes": MaxToolResponseBytes,
		"_truncation_note": fmt.Sprintf("Response truncated from %d to ~%d bytes to prevent context overflow. Consider using more specific filters to reduce result size.", len(raw), MaxToolResponseBytes),
		"partial_data":     partial,
	}
}

func invalidArgs(tool string, args map[string]any, err error) map[string]any {
	return map[string]any{
		"error":         fmt.Sprintf("Invalid arguments for %s: %v", tool, err),
		"provided_args": args,
	}
}

// objectSchema builds a JSON-schema object declaration.
func objectSchema(props map[string]any, required ...string) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func strArg(args map[string]any, key, def string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	return s, nil
}

func intArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("argument %q must be an integer", key)
	}
}

func boolArg(args map[string]any, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("argument %q must be a boolean", key)
	}
	return b, nil
}

package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// Aliases the diagnostics server is known to expose under different names.
var liveAliases = map[string]string{
	"list_entities":    "get_entities",
	"list_automations": "get_automations",
	"get_error_log":    "get_ha_error_log",
}

// LiveBackend proxies every operation to a Home Assistant diagnostics MCP
// server over streamable HTTP. A backend that failed to connect stays usable:
// every operation returns a structured connection-error payload.
type LiveBackend struct {
	url  string
	log  zerolog.Logger
	mcp  *client.Client
	conn bool
	err  string

	// Tool names discovered at connect time, in sorted order.
	tools map[string]struct{}
}

// NewLiveBackend connects to the diagnostics MCP server at url. Connection
// failures are recorded on the backend rather than returned; the caller gets
// a backend either way.
func NewLiveBackend(ctx context.Context, url, token string, log zerolog.Logger) *LiveBackend {
	b := &LiveBackend{
		url:   url,
		log:   log,
		tools: map[string]struct{}{},
	}

	if err := b.connect(ctx, token); err != nil {
		b.err = err.Error()
		log.Warn().Err(err).Str("url", url).Msg("diagnostics server connection failed, backend stays disconnected")
		return b
	}

	b.conn = true
	log.Info().Str("url", url).Int("tools", len(b.tools)).Msg("connected to diagnostics server")
	return b
}

func (b *LiveBackend) connect(ctx context.Context, token string) error {
	var opts []transport.StreamableHTTPCOption
	if token != "" {
		opts = append(opts, transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + token,
		}))
	}

	c, err := client.NewStreamableHttpClient(b.url, opts...)
	if err != nil {
		return fmt.Errorf("failed to create MCP client: %w", err)
	}

	if err := c.Start(ctx); err != nil {
		return fmt.Errorf("failed to start MCP transport: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "home-assistant-diagnostics-agent",
		Version: "1.0.0",
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		return fmt.Errorf("MCP initialize failed: %w", err)
	}

	list, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list server tools: %w", err)
	}

	b.mcp = c
	for _, t := range list.Tools {
		b.tools[t.Name] = struct{}{}
	}
	return nil
}

// Close shuts down the underlying MCP transport.
func (b *LiveBackend) Close() error {
	if b.mcp == nil {
		return nil
	}
	return b.mcp.Close()
}

// call invokes the named server tool and decodes its text content as JSON.
// Any failure becomes a structured error payload.
func (b *LiveBackend) call(ctx context.Context, name string, args map[string]any) map[string]any {
	if !b.conn {
		msg := b.err
		if msg == "" {
			msg = "diagnostics server not connected"
		}
		return map[string]any{"success": false, "error": msg}
	}

	// Resolve to a server-side alias when the canonical name is absent.
	if _, ok := b.tools[name]; !ok {
		if alias, ok := liveAliases[name]; ok {
			if _, ok := b.tools[alias]; ok {
				name = alias
			}
		}
	}

	b.log.Debug().Str("tool", name).Msg("calling diagnostics server")

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := b.mcp.CallTool(ctx, req)
	if err != nil {
		return map[string]any{
			"success": false,
			"error":   fmt.Sprintf("Tool call failed: %v", err),
			"tool":    name,
		}
	}

	text := joinTextContent(res.Content)
	if res.IsError {
		return map[string]any{"success": false, "error": text, "tool": name}
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		// Servers may return plain text or a bare JSON array.
		var list []any
		if err := json.Unmarshal([]byte(text), &list); err == nil {
			return map[string]any{"items": list, "count": len(list)}
		}
		return map[string]any{"data": text}
	}
	return payload
}

func joinTextContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func (b *LiveBackend) DiagnoseSystem(ctx context.Context, includeEntities bool) map[string]any {
	return b.call(ctx, "diagnose_system", map[string]any{"include_entities": includeEntities})
}

func (b *LiveBackend) DiagnoseIssue(ctx context.Context, entityID string) map[string]any {
	return b.call(ctx, "diagnose_issue", map[string]any{"entity_id": entityID})
}

func (b *LiveBackend) DiagnoseAutomation(ctx context.Context, automationID string) map[string]any {
	return b.call(ctx, "diagnose_automation", map[string]any{"automation_id": automationID})
}

func (b *LiveBackend) AuditZigbeeMesh(ctx context.Context, limit int) map[string]any {
	return b.call(ctx, "audit_zigbee_mesh", map[string]any{"limit": limit})
}

func (b *LiveBackend) FindOrphanEntities(ctx context.Context) map[string]any {
	return b.call(ctx, "find_orphan_entities", nil)
}

func (b *LiveBackend) DetectAutomationConflicts(ctx context.Context) map[string]any {
	return b.call(ctx, "detect_automation_conflicts", nil)
}

func (b *LiveBackend) EnergyConsumptionReport(ctx context.Context, periodHours int) map[string]any {
	return b.call(ctx, "energy_consumption_report", map[string]any{"period_hours": periodHours})
}

func (b *LiveBackend) BatteryReport(ctx context.Context) map[string]any {
	return b.call(ctx, "battery_report", nil)
}

func (b *LiveBackend) FindUnavailableEntities(ctx context.Context) map[string]any {
	return b.call(ctx, "find_unavailable_entities", nil)
}

func (b *LiveBackend) FindStaleEntities(ctx context.Context, hours int) map[string]any {
	return b.call(ctx, "find_stale_entities", map[string]any{"hours": hours})
}

func (b *LiveBackend) GetRepairItems(ctx context.Context) map[string]any {
	return b.call(ctx, "get_repair_items", nil)
}

func (b *LiveBackend) GetUpdateStatus(ctx context.Context) map[string]any {
	return b.call(ctx, "get_update_status", nil)
}

func (b *LiveBackend) GetErrorLog(ctx context.Context) map[string]any {
	return b.call(ctx, "get_error_log", nil)
}

func (b *LiveBackend) ListEntities(ctx context.Context, domain string, limit int) map[string]any {
	args := map[string]any{"limit": limit}
	if domain != "" {
		args["domain"] = domain
	}
	return b.call(ctx, "list_entities", args)
}

func (b *LiveBackend) ListAutomations(ctx context.Context) map[string]any {
	return b.call(ctx, "list_automations", nil)
}

func (b *LiveBackend) GetEntityStatistics(ctx context.Context, entityID string, periodHours int) map[string]any {
	return b.call(ctx, "get_entity_statistics", map[string]any{
		"entity_id":    entityID,
		"period_hours": periodHours,
	})
}

func (b *LiveBackend) IdentifyDevice(ctx context.Context, target, pattern string, durationSeconds int) map[string]any {
	return b.call(ctx, "identify_device", map[string]any{
		"device_id_or_entity_id": target,
		"pattern":                pattern,
		"duration":               durationSeconds,
	})
}

// GetResource is only served from the demo dataset; the live server exposes
// reports as tool output instead.
func (b *LiveBackend) GetResource(_ context.Context, uri string) string {
	return fmt.Sprintf("# Resource Not Available\n\nResources are only available in demo mode.\n\nURI: %s", uri)
}

func (b *LiveBackend) CallTool(ctx context.Context, name string, args map[string]any) map[string]any {
	if !b.conn {
		msg := b.err
		if msg == "" {
			msg = "diagnostics server not connected"
		}
		return map[string]any{"success": false, "error": msg}
	}
	if _, ok := b.tools[name]; !ok {
		return map[string]any{"success": false, "error": fmt.Sprintf("Unknown tool: %s", name)}
	}
	return b.call(ctx, name, args)
}

func (b *LiveBackend) AvailableTools() []string {
	names := make([]string, 0, len(b.tools))
	for name := range b.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *LiveBackend) State() ConnectionState {
	return ConnectionState{Mode: "live", Connected: b.conn, LastError: b.err}
}

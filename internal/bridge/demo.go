package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DemoBackend serves pre-recorded diagnostic payloads. Every payload carries
// demo_mode: true so the model can tell the user the data is canned.
type DemoBackend struct {
	log zerolog.Logger
}

// NewDemoBackend returns a backend serving the built-in demo dataset.
func NewDemoBackend(log zerolog.Logger) *DemoBackend {
	return &DemoBackend{log: log}
}

func (d *DemoBackend) payload(name string) map[string]any {
	d.log.Debug().Str("operation", name).Msg("serving demo payload")

	src, ok := demoPayloads[name]
	if !ok {
		return map[string]any{
			"error":     fmt.Sprintf("Demo data not found: %s", name),
			"demo_mode": true,
			"timestamp": time.Now().Format(time.RFC3339),
		}
	}

	// Shallow copy so callers cannot mutate the dataset.
	out := make(map[string]any, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	out["demo_mode"] = true
	return out
}

func (d *DemoBackend) DiagnoseSystem(_ context.Context, _ bool) map[string]any {
	return d.payload("diagnose_system")
}

func (d *DemoBackend) DiagnoseIssue(_ context.Context, _ string) map[string]any {
	return d.payload("diagnose_issue")
}

func (d *DemoBackend) DiagnoseAutomation(_ context.Context, _ string) map[string]any {
	return d.payload("diagnose_automation")
}

func (d *DemoBackend) AuditZigbeeMesh(_ context.Context, _ int) map[string]any {
	return d.payload("audit_zigbee_mesh")
}

func (d *DemoBackend) FindOrphanEntities(_ context.Context) map[string]any {
	return d.payload("find_orphan_entities")
}

func (d *DemoBackend) DetectAutomationConflicts(_ context.Context) map[string]any {
	return d.payload("detect_automation_conflicts")
}

func (d *DemoBackend) EnergyConsumptionReport(_ context.Context, _ int) map[string]any {
	return d.payload("energy_consumption_report")
}

func (d *DemoBackend) BatteryReport(_ context.Context) map[string]any {
	return d.payload("battery_report")
}

func (d *DemoBackend) FindUnavailableEntities(_ context.Context) map[string]any {
	return d.payload("find_unavailable_entities")
}

func (d *DemoBackend) FindStaleEntities(_ context.Context, _ int) map[string]any {
	return d.payload("find_stale_entities")
}

func (d *DemoBackend) GetRepairItems(_ context.Context) map[string]any {
	return d.payload("get_repair_items")
}

func (d *DemoBackend) GetUpdateStatus(_ context.Context) map[string]any {
	return d.payload("get_update_status")
}

func (d *DemoBackend) GetErrorLog(_ context.Context) map[string]any {
	return d.payload("get_error_log")
}

func (d *DemoBackend) ListEntities(_ context.Context, _ string, _ int) map[string]any {
	return d.payload("list_entities")
}

func (d *DemoBackend) ListAutomations(_ context.Context) map[string]any {
	return d.payload("list_automations")
}

func (d *DemoBackend) GetEntityStatistics(_ context.Context, _ string, _ int) map[string]any {
	return d.payload("get_entity_statistics")
}

// IdentifyDevice never touches hardware in demo mode; it reports what would
// have happened.
func (d *DemoBackend) IdentifyDevice(_ context.Context, target, pattern string, durationSeconds int) map[string]any {
	return map[string]any{
		"success":   true,
		"message":   fmt.Sprintf("[DEMO] Would identify device: %s", target),
		"pattern":   pattern,
		"duration":  durationSeconds,
		"demo_mode": true,
	}
}

func (d *DemoBackend) GetResource(_ context.Context, uri string) string {
	if md, ok := demoResources[uri]; ok {
		return md
	}
	return fmt.Sprintf("# Resource Not Found\n\nURI: %s\n\n(Demo data not available)", uri)
}

// CallTool always fails: the demo backend exposes no dynamic tools.
func (d *DemoBackend) CallTool(_ context.Context, name string, _ map[string]any) map[string]any {
	return map[string]any{
		"success": false,
		"error":   "Tool not available in demo mode",
		"tool":    name,
	}
}

func (d *DemoBackend) AvailableTools() []string { return nil }

func (d *DemoBackend) State() ConnectionState {
	return ConnectionState{Mode: "demo", Connected: true}
}

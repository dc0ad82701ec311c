// Package bridge abstracts the Home Assistant diagnostics data source. Two
// implementations exist: a demo backend serving pre-recorded payloads and a
// live backend proxying to a diagnostics MCP server.
//
// Operations return payload maps, never errors. Failures (missing demo data,
// lost connections, remote faults) are reported as structured error payloads
// so the model can read and narrate them.
package bridge

import "context"

// Backend is the set of diagnostic operations the agent can invoke.
type Backend interface {
	// DiagnoseSystem runs the complete system diagnostic.
	DiagnoseSystem(ctx context.Context, includeEntities bool) map[string]any

	// DiagnoseIssue deep-diagnoses a single entity.
	DiagnoseIssue(ctx context.Context, entityID string) map[string]any

	// DiagnoseAutomation inspects a single automation.
	DiagnoseAutomation(ctx context.Context, automationID string) map[string]any

	// AuditZigbeeMesh analyzes Zigbee mesh health.
	AuditZigbeeMesh(ctx context.Context, limit int) map[string]any

	// FindOrphanEntities lists entities unused by automations, scripts or scenes.
	FindOrphanEntities(ctx context.Context) map[string]any

	// DetectAutomationConflicts finds race conditions and automation loops.
	DetectAutomationConflicts(ctx context.Context) map[string]any

	// EnergyConsumptionReport reports energy usage over the given period.
	EnergyConsumptionReport(ctx context.Context, periodHours int) map[string]any

	// BatteryReport reports battery levels across battery-powered devices.
	BatteryReport(ctx context.Context) map[string]any

	// FindUnavailableEntities lists entities currently unavailable.
	FindUnavailableEntities(ctx context.Context) map[string]any

	// FindStaleEntities lists entities that stopped updating.
	FindStaleEntities(ctx context.Context, hours int) map[string]any

	// GetRepairItems returns the repair panel items.
	GetRepairItems(ctx context.Context) map[string]any

	// GetUpdateStatus returns pending core/addon/device updates.
	GetUpdateStatus(ctx context.Context) map[string]any

	// GetErrorLog returns the error log summary.
	GetErrorLog(ctx context.Context) map[string]any

	// ListEntities lists entities, optionally filtered by domain.
	ListEntities(ctx context.Context, domain string, limit int) map[string]any

	// ListAutomations lists automations with id and alias.
	ListAutomations(ctx context.Context) map[string]any

	// GetEntityStatistics returns history statistics for one entity.
	GetEntityStatistics(ctx context.Context, entityID string, periodHours int) map[string]any

	// IdentifyDevice physically identifies a device (flash, beep, toggle).
	IdentifyDevice(ctx context.Context, target, pattern string, durationSeconds int) map[string]any

	// GetResource fetches a markdown diagnostic report by URI.
	GetResource(ctx context.Context, uri string) string

	// CallTool invokes a tool by name that has no dedicated method. This is
	// the escape hatch for dynamically discovered tools.
	CallTool(ctx context.Context, name string, args map[string]any) map[string]any

	// AvailableTools returns the tool names discovered on the backend.
	// The demo backend discovers nothing.
	AvailableTools() []string

	// State reports the backend's connection state.
	State() ConnectionState
}

// ConnectionState describes which backend is active and whether it can
// reach its data source.
type ConnectionState struct {
	Mode      string `json:"mode"`
	Connected bool   `json:"connected"`
	LastError string `json:"last_error,omitempty"`
}

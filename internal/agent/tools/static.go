package tools

import (
	"context"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/provider"
)

// registerStatic declares the core diagnostic tools in a fixed order. The
// order is part of the contract: the model sees a stable tool list across
// sessions.
func (r *Registry) registerStatic() {
	b := r.backend

	r.register(provider.Declaration{
		Name:        "diagnose_system",
		Description: "Run complete Home Assistant system diagnostic check. Returns overall health score, detected issues by severity, and actionable recommendations.",
		Parameters: objectSchema(map[string]any{
			"include_entities": map[string]any{"type": "boolean", "description": "Include detailed entity analysis (default: true)"},
		}),
	}, func(ctx context.Context, args map[string]any) map[string]any {
		include, err := boolArg(args, "include_entities", true)
		if err != nil {
			return invalidArgs("diagnose_system", args, err)
		}
		return b.DiagnoseSystem(ctx, include)
	})

	r.register(provider.Declaration{
		Name:        "diagnose_issue",
		Description: "Deep-diagnose a specific entity by entity_id. Returns summary, severity, root causes, and recommended fixes.",
		Parameters: objectSchema(map[string]any{
			"entity_id": map[string]any{"type": "string", "description": "Home Assistant entity_id to diagnose"},
		}, "entity_id"),
	}, func(ctx context.Context, args map[string]any) map[string]any {
		entityID, err := strArg(args, "entity_id", "")
		if err != nil {
			return invalidArgs("diagnose_issue", args, err)
		}
		return b.DiagnoseIssue(ctx, entityID)
	})

	r.register(provider.Declaration{
		Name:        "audit_zigbee_mesh",
		Description: "Analyze Zigbee mesh network health. Returns mesh health score (0-100), weak links with LQI/RSSI values, orphan devices, and router placement recommendations.",
		Parameters: objectSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Maximum number of devices to analyze (default: 100)"},
		}),
	}, func(ctx context.Context, args map[string]any) map[string]any {
		limit, err := intArg(args, "limit", 100)
		if err != nil {
			return invalidArgs("audit_zigbee_mesh", args, err)
		}
		return b.AuditZigbeeMesh(ctx, limit)
	})

	r.register(provider.Declaration{
		Name:        "find_orphan_entities",
		Description: "Find entities not used in any automations, scripts, or scenes. Returns total orphan count, percentage, and breakdown by domain. Useful for cleanup.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ map[string]any) map[string]any {
		return b.FindOrphanEntities(ctx)
	})

	r.register(provider.Declaration{
		Name:        "detect_automation_conflicts",
		Description: "Detect race conditions, infinite loops, and conflicting automations. Returns total conflicts, race conditions (multiple automations on same entity), and circular dependencies.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ map[string]any) map[string]any {
		return b.DetectAutomationConflicts(ctx)
	})

	r.register(provider.Declaration{
		Name:        "battery_report",
		Description: "Get battery health report for all battery-powered devices. Returns low battery count, critical batteries, and device-level battery percentages.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ map[string]any) map[string]any {
		return b.BatteryReport(ctx)
	})

	r.register(provider.Declaration{
		Name:        "energy_consumption_report",
		Description: "Generate energy consumption report with cost estimates. Returns total consumption, top consumers, cost estimate, and energy-saving recommendations.",
		Parameters: objectSchema(map[string]any{
			"period_hours": map[string]any{"type": "integer", "description": "Time period in hours for the report (default: 24)"},
		}),
	}, func(ctx context.Context, args map[string]any) map[string]any {
		period, err := intArg(args, "period_hours", 24)
		if err != nil {
			return invalidArgs("energy_consumption_report", args, err)
		}
		return b.EnergyConsumptionReport(ctx, period)
	})

	r.register(provider.Declaration{
		Name:        "identify_device",
		Description: "Physically identify a device (flash/beep/toggle) by entity_id or device_id.",
		Parameters: objectSchema(map[string]any{
			"device_id_or_entity_id": map[string]any{"type": "string", "description": "Device ID or entity_id"},
			"pattern":                map[string]any{"type": "string", "description": "auto, flash, toggle, color, beep"},
			"duration":               map[string]any{"type": "integer", "description": "Duration in seconds"},
		}, "device_id_or_entity_id"),
	}, func(ctx context.Context, args map[string]any) map[string]any {
		target, err := strArg(args, "device_id_or_entity_id", "")
		if err != nil {
			return invalidArgs("identify_device", args, err)
		}
		pattern, err := strArg(args, "pattern", "auto")
		if err != nil {
			return invalidArgs("identify_device", args, err)
		}
		duration, err := intArg(args, "duration", 3)
		if err != nil {
			return invalidArgs("identify_device", args, err)
		}
		return b.IdentifyDevice(ctx, target, pattern, duration)
	})

	r.register(provider.Declaration{
		Name:        "list_entities",
		Description: "List entities (optionally by domain). Useful to confirm available entity_ids.",
		Parameters: objectSchema(map[string]any{
			"domain": map[string]any{"type": "string", "description": "Optional domain filter"},
			"limit":  map[string]any{"type": "integer", "description": "Max entities to return (default 100)"},
		}),
	}, func(ctx context.Context, args map[string]any) map[string]any {
		domain, err := strArg(args, "domain", "")
		if err != nil {
			return invalidArgs("list_entities", args, err)
		}
		limit, err := intArg(args, "limit", 100)
		if err != nil {
			return invalidArgs("list_entities", args, err)
		}
		return b.ListEntities(ctx, domain, limit)
	})

	r.register(provider.Declaration{
		Name:        "list_automations",
		Description: "List automations with entity_id and alias.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ map[string]any) map[string]any {
		return b.ListAutomations(ctx)
	})

	r.register(provider.Declaration{
		Name:        "find_unavailable_entities",
		Description: "Find entities that are currently unavailable.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ map[string]any) map[string]any {
		return b.FindUnavailableEntities(ctx)
	})

	r.register(provider.Declaration{
		Name:        "find_stale_entities",
		Description: "Find entities not updating within a timeframe.",
		Parameters: objectSchema(map[string]any{
			"hours": map[string]any{"type": "integer", "description": "Threshold in hours (default 2)"},
		}),
	}, func(ctx context.Context, args map[string]any) map[string]any {
		hours, err := intArg(args, "hours", 2)
		if err != nil {
			return invalidArgs("find_stale_entities", args, err)
		}
		return b.FindStaleEntities(ctx, hours)
	})

	r.register(provider.Declaration{
		Name:        "get_repair_items",
		Description: "Return Home Assistant repair panel items.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ map[string]any) map[string]any {
		return b.GetRepairItems(ctx)
	})

	r.register(provider.Declaration{
		Name:        "get_update_status",
		Description: "Return available updates for core/addons/devices.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ map[string]any) map[string]any {
		return b.GetUpdateStatus(ctx)
	})

	r.register(provider.Declaration{
		Name:        "get_error_log",
		Description: "Return Home Assistant error log summary.",
		Parameters:  objectSchema(nil),
	}, func(ctx context.Context, _ map[string]any) map[string]any {
		return b.GetErrorLog(ctx)
	})

	r.register(provider.Declaration{
		Name:        "get_entity_statistics",
		Description: "Return history statistics (min/max/mean) for an entity over a period.",
		Parameters: objectSchema(map[string]any{
			"entity_id":    map[string]any{"type": "string", "description": "Entity to query"},
			"period_hours": map[string]any{"type": "integer", "description": "Time period in hours (default: 24)"},
		}, "entity_id"),
	}, func(ctx context.Context, args map[string]any) map[string]any {
		entityID, err := strArg(args, "entity_id", "")
		if err != nil {
			return invalidArgs("get_entity_statistics", args, err)
		}
		period, err := intArg(args, "period_hours", 24)
		if err != nil {
			return invalidArgs("get_entity_statistics", args, err)
		}
		return b.GetEntityStatistics(ctx, entityID, period)
	})
}

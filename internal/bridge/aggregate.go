package bridge

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunFullDiagnostics runs the full diagnostic suite concurrently and blends
// the system and mesh scores into an overall health score. One slow or
// failing diagnostic never cancels its siblings; each operation's payload
// (including its error payload) lands under its own key.
func RunFullDiagnostics(ctx context.Context, b Backend) map[string]any {
	if st := b.State(); st.Mode == "live" && !st.Connected {
		msg := st.LastError
		if msg == "" {
			msg = "diagnostics server not connected"
		}
		return map[string]any{
			"error":     msg,
			"success":   false,
			"demo_mode": false,
		}
	}

	ops := []struct {
		key string
		run func(context.Context) map[string]any
	}{
		{"system", func(ctx context.Context) map[string]any { return b.DiagnoseSystem(ctx, true) }},
		{"zigbee_mesh", func(ctx context.Context) map[string]any { return b.AuditZigbeeMesh(ctx, 100) }},
		{"orphan_entities", b.FindOrphanEntities},
		{"automation_conflicts", b.DetectAutomationConflicts},
		{"energy", func(ctx context.Context) map[string]any { return b.EnergyConsumptionReport(ctx, 24) }},
		{"battery", b.BatteryReport},
		{"repairs", b.GetRepairItems},
		{"updates", b.GetUpdateStatus},
	}

	var (
		mu      sync.Mutex
		results = make(map[string]any, len(ops))
	)

	var g errgroup.Group
	for _, op := range ops {
		g.Go(func() error {
			payload := op.run(ctx)
			mu.Lock()
			results[op.key] = payload
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	systemScore := scoreFrom(results, "system", "global_health_score", 0)
	meshScore := scoreFrom(results, "zigbee_mesh", "mesh_health_score", 100)
	overall := systemScore*0.7 + meshScore*0.3

	return map[string]any{
		"overall_health_score": math.Round(overall*10) / 10,
		"timestamp":            time.Now().Format(time.RFC3339),
		"diagnostics":          results,
		"demo_mode":            b.State().Mode == "demo",
	}
}

// scoreFrom digs a numeric score out of one diagnostic's payload, falling
// back to def when the payload or the field is missing.
func scoreFrom(results map[string]any, key, field string, def float64) float64 {
	payload, ok := results[key].(map[string]any)
	if !ok {
		return def
	}
	switch v := payload[field].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

package bridge

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoBackendAnnotatesPayloads(t *testing.T) {
	d := NewDemoBackend(zerolog.Nop())
	ctx := context.Background()

	got := d.DiagnoseSystem(ctx, true)
	assert.Equal(t, true, got["demo_mode"])
	assert.Equal(t, 80, got["global_health_score"])

	// Every canned operation carries the annotation.
	for _, payload := range []map[string]any{
		d.AuditZigbeeMesh(ctx, 100),
		d.BatteryReport(ctx),
		d.GetErrorLog(ctx),
		d.ListAutomations(ctx),
	} {
		assert.Equal(t, true, payload["demo_mode"])
	}
}

func TestDemoBackendDoesNotLeakMutations(t *testing.T) {
	d := NewDemoBackend(zerolog.Nop())
	ctx := context.Background()

	first := d.BatteryReport(ctx)
	first["low_battery_count"] = 999

	second := d.BatteryReport(ctx)
	assert.Equal(t, 3, second["low_battery_count"])
}

func TestDemoBackendMissingPayload(t *testing.T) {
	d := NewDemoBackend(zerolog.Nop())

	got := d.payload("entity_dependency_graph")
	assert.Equal(t, "Demo data not found: entity_dependency_graph", got["error"])
	assert.Equal(t, true, got["demo_mode"])
	assert.NotEmpty(t, got["timestamp"])
}

func TestDemoBackendOrphanEntities(t *testing.T) {
	d := NewDemoBackend(zerolog.Nop())

	got := d.FindOrphanEntities(context.Background())
	assert.Equal(t, 23, got["total_orphans"])

	byDomain, ok := got["by_domain"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, byDomain)
}

func TestDemoBackendIdentifyDevice(t *testing.T) {
	d := NewDemoBackend(zerolog.Nop())

	got := d.IdentifyDevice(context.Background(), "light.hallway", "flash", 3)
	assert.Equal(t, true, got["success"])
	assert.Contains(t, got["message"], "light.hallway")
	assert.Equal(t, true, got["demo_mode"])
}

func TestDemoBackendCallToolRefuses(t *testing.T) {
	d := NewDemoBackend(zerolog.Nop())

	got := d.CallTool(context.Background(), "restart_home_assistant", nil)
	assert.Equal(t, false, got["success"])
	assert.Equal(t, "Tool not available in demo mode", got["error"])
	assert.Equal(t, "restart_home_assistant", got["tool"])
}

func TestDemoBackendState(t *testing.T) {
	d := NewDemoBackend(zerolog.Nop())

	st := d.State()
	assert.Equal(t, "demo", st.Mode)
	assert.True(t, st.Connected)
	assert.Empty(t, d.AvailableTools())
}

package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/bridge"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/knowledge"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/snapshot"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var staticOrder = []string{
	"diagnose_system", "diagnose_issue", "audit_zigbee_mesh",
	"find_orphan_entities", "detect_automation_conflicts", "battery_report",
	"energy_consumption_report", "identify_device", "list_entities",
	"list_automations", "find_unavailable_entities", "find_stale_entities",
	"get_repair_items", "get_update_status", "get_error_log",
	"get_entity_statistics",
}

func demoRegistry(t *testing.T, opts ...func(*Options)) *Registry {
	t.Helper()
	o := Options{
		Backend: bridge.NewDemoBackend(zerolog.Nop()),
		Logger:  zerolog.Nop(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return NewRegistry(o)
}

func TestStaticDeclarationOrder(t *testing.T) {
	r := demoRegistry(t)
	assert.Equal(t, staticOrder, r.Names())
}

func TestFeatureFlaggedDeclarations(t *testing.T) {
	r := demoRegistry(t, func(o *Options) {
		o.Knowledge = knowledge.New(true, bridge.DemoDataset(), "", zerolog.Nop())
		o.Snapshots = snapshot.NewLog(true)
	})

	names := r.Names()
	require.Len(t, names, len(staticOrder)+2)
	assert.Equal(t, "query_diagnostics_knowledge", names[len(staticOrder)])
	assert.Equal(t, "query_diagnostic_history", names[len(staticOrder)+1])
}

func TestDisabledFeaturesNotDeclared(t *testing.T) {
	r := demoRegistry(t, func(o *Options) {
		o.Knowledge = knowledge.New(false, nil, "", zerolog.Nop())
		o.Snapshots = snapshot.NewLog(false)
	})
	assert.Equal(t, staticOrder, r.Names())
}

// dynamicBackend exposes extra tool names the way a live server would.
type dynamicBackend struct {
	*bridge.DemoBackend
	extra []string
}

func (d *dynamicBackend) AvailableTools() []string { return d.extra }

func (d *dynamicBackend) CallTool(_ context.Context, name string, _ map[string]any) map[string]any {
	return map[string]any{"called": name}
}

func TestDynamicPassAppendsUndeclaredTools(t *testing.T) {
	// diagnose_system collides with a static declaration; first wins.
	b := &dynamicBackend{
		DemoBackend: bridge.NewDemoBackend(zerolog.Nop()),
		extra:       []string{"diagnose_system", "restart_home_assistant"},
	}
	r := NewRegistry(Options{Backend: b, Logger: zerolog.Nop()})

	names := r.Names()
	assert.Equal(t, append(append([]string{}, staticOrder...), "restart_home_assistant"), names)

	got := r.Execute(context.Background(), "restart_home_assistant", nil)
	assert.Equal(t, "restart_home_assistant", got["called"])
}

func TestExecuteKnownTool(t *testing.T) {
	r := demoRegistry(t)

	got := r.Execute(context.Background(), "find_orphan_entities", nil)
	assert.Equal(t, 23, got["total_orphans"])
}

func TestExecuteInvalidArguments(t *testing.T) {
	r := demoRegistry(t)

	got := r.Execute(context.Background(), "find_stale_entities", map[string]any{"hours": "two"})
	assert.Contains(t, got["error"], "Invalid arguments for find_stale_entities")
	assert.Equal(t, map[string]any{"hours": "two"}, got["provided_args"])
}

func TestExecuteUnknownTool(t *testing.T) {
	r := demoRegistry(t)

	got := r.Execute(context.Background(), "reboot_router", nil)
	errMsg, ok := got["error"].(string)
	require.True(t, ok)
	assert.Contains(t, errMsg, "Unknown tool: reboot_router")

	known, ok := got["available_tools"].([]string)
	require.True(t, ok)
	assert.Contains(t, known, "diagnose_system")
}

func TestExecuteSnapshotsSuccessfulCalls(t *testing.T) {
	snaps := snapshot.NewLog(true)
	r := demoRegistry(t, func(o *Options) { o.Snapshots = snaps })

	r.Execute(context.Background(), "battery_report", nil)
	assert.Equal(t, 1, snaps.Len())

	// The history tool itself is never snapshotted.
	r.Execute(context.Background(), "query_diagnostic_history", nil)
	assert.Equal(t, 1, snaps.Len())
}

func TestTruncateResult(t *testing.T) {
	huge := map[string]any{"blob": strings.Repeat("x", MaxToolResponseBytes+1024)}

	got := truncateResult(huge)
	assert.Equal(t, true, got["_truncated"])
	assert.NotEmpty(t, got["partial_data"])
	assert.Less(t, len(got["partial_data"].(string)), MaxToolResponseBytes)

	small := map[string]any{"ok": true}
	assert.Equal(t, small, truncateResult(small))
}

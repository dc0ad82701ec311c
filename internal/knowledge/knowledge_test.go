package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePayloads() map[string]map[string]any {
	return map[string]map[string]any{
		"battery_report": {
			"low_battery_count": 3,
			"critical": []map[string]any{
				{"entity_id": "sensor.garage_door_battery", "level": 8},
			},
		},
		"audit_zigbee_mesh": {
			"mesh_health_score": 90,
			"weak_links": []map[string]any{
				{"device": "sensor.shed_door", "lqi": 32},
			},
		},
	}
}

func TestQueryFindsRelevantDocument(t *testing.T) {
	idx := New(true, samplePayloads(), "", zerolog.Nop())

	got := idx.Query("Which devices have low battery?")
	require.NotContains(t, got, "error")

	sources, ok := got["sources"].([]string)
	require.True(t, ok)
	assert.Contains(t, sources, "battery_report")
	assert.Contains(t, got["answer"], "garage_door_battery")
}

func TestQueryDisabled(t *testing.T) {
	idx := New(false, samplePayloads(), "", zerolog.Nop())

	got := idx.Query("battery")
	assert.Contains(t, got["error"], "disabled")
}

func TestQueryEmptyIndex(t *testing.T) {
	idx := New(true, nil, "", zerolog.Nop())

	got := idx.Query("battery")
	assert.Contains(t, got["error"], "no documents")
}

func TestQueryNoMatch(t *testing.T) {
	idx := New(true, samplePayloads(), "", zerolog.Nop())

	got := idx.Query("quantum chromodynamics")
	assert.NotContains(t, got, "error")
	assert.Contains(t, got["answer"], "No knowledge base documents match")
}

func TestMarkdownResourcesIndexed(t *testing.T) {
	dir := t.TempDir()
	md := "# Zigbee troubleshooting\n\nWeak links usually mean missing routers near the shed.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zigbee.md"), []byte(md), 0o600))

	idx := New(true, nil, dir, zerolog.Nop())

	got := idx.Query("troubleshooting routers shed")
	sources := got["sources"].([]string)
	assert.Contains(t, sources, "zigbee.md")
}

package snapshot

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSaveAndRead(t *testing.T) {
	l := NewLog(true)

	l.Save("battery_report", nil, map[string]any{"low_battery_count": 3})
	l.Save("diagnose_system", map[string]any{"include_entities": true}, map[string]any{"global_health_score": 80})

	got := l.Snapshots()
	assert.Equal(t, 2, got["count"])

	entries, ok := got["snapshots"].([]Entry)
	require.True(t, ok)
	assert.Equal(t, "battery_report", entries[0].Tool)
	assert.Equal(t, "diagnose_system", entries[1].Tool)
	assert.NotEmpty(t, entries[0].Timestamp)
}

func TestLogBounded(t *testing.T) {
	l := NewLog(true)

	for i := 0; i < MaxEntries+25; i++ {
		l.Save(fmt.Sprintf("tool_%d", i), nil, nil)
	}

	assert.Equal(t, MaxEntries, l.Len())

	// Oldest entries were evicted; insertion order preserved.
	entries := l.Snapshots()["snapshots"].([]Entry)
	assert.Equal(t, "tool_25", entries[0].Tool)
	assert.Equal(t, fmt.Sprintf("tool_%d", MaxEntries+24), entries[len(entries)-1].Tool)
}

func TestLogDisabled(t *testing.T) {
	l := NewLog(false)

	l.Save("battery_report", nil, map[string]any{"low_battery_count": 3})
	assert.Equal(t, 0, l.Len())

	got := l.Snapshots()
	assert.Contains(t, got["error"], "disabled")
	assert.NotContains(t, got, "snapshots")
}

func TestLogCoercesUnserializableValues(t *testing.T) {
	l := NewLog(true)

	// Channels cannot be marshaled; the whole map collapses to a string.
	l.Save("weird", map[string]any{"ch": make(chan int)}, map[string]any{"n": 1})

	entries := l.Snapshots()["snapshots"].([]Entry)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Args, "data")
	// Numbers survive the JSON round trip as float64.
	assert.Equal(t, float64(1), entries[0].Result["n"])
}

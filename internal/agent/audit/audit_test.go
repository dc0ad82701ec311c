package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWritesJSONLEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	l, err := NewLogger(path, "session-1")
	require.NoError(t, err)

	require.NoError(t, l.LogSessionStart("demo", "gemini-2.0-flash"))
	require.NoError(t, l.LogUserMessage("check batteries"))
	require.NoError(t, l.LogToolStart("battery_report", map[string]any{}))
	require.NoError(t, l.LogToolComplete("battery_report", 5*time.Millisecond, map[string]any{"low_battery_count": 3}))
	require.NoError(t, l.LogSafetyHalt("identify_device"))
	require.NoError(t, l.LogTurnComplete(1, false, 10*time.Millisecond))
	require.NoError(t, l.LogSessionEnd())
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, events, 7)
	assert.Equal(t, EventTypeSessionStart, events[0].Type)
	assert.Equal(t, EventTypeSafetyHalt, events[4].Type)
	assert.Equal(t, EventTypeSessionEnd, events[6].Type)
	for _, e := range events {
		assert.Equal(t, "session-1", e.SessionID)
		assert.False(t, e.Timestamp.IsZero())
	}
	assert.Equal(t, "identify_device", events[4].Data["tool_name"])
}

func TestLoggerAppendsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	first, err := NewLogger(path, "a")
	require.NoError(t, err)
	require.NoError(t, first.LogSessionStart("demo", "m"))
	require.NoError(t, first.Close())

	second, err := NewLogger(path, "b")
	require.NoError(t, err)
	require.NoError(t, second.LogSessionStart("demo", "m"))
	require.NoError(t, second.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session_id":"a"`)
	assert.Contains(t, string(data), `"session_id":"b"`)
}

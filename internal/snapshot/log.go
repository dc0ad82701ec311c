// Package snapshot keeps a bounded in-memory history of tool invocations so
// the model can answer "what did we already check" without re-running
// diagnostics.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MaxEntries bounds the history; the oldest entries are evicted first.
const MaxEntries = 100

// Entry is one recorded tool invocation.
type Entry struct {
	Timestamp string         `json:"timestamp"`
	Tool      string         `json:"tool"`
	Args      map[string]any `json:"args"`
	Result    map[string]any `json:"result"`
}

// Log is a feature-flagged append log. A disabled log drops writes and
// answers reads with a structured error payload.
type Log struct {
	mu      sync.Mutex
	enabled bool
	entries []Entry
	now     func() time.Time
}

// NewLog returns a snapshot log. When enabled is false the log is inert.
func NewLog(enabled bool) *Log {
	return &Log{enabled: enabled, now: time.Now}
}

// Enabled reports whether snapshots are being recorded.
func (l *Log) Enabled() bool { return l.enabled }

// Save records one invocation. It never fails: values that cannot be
// serialized are coerced to strings so a bad payload can't poison the
// tool path.
func (l *Log) Save(tool string, args, result map[string]any) {
	if !l.enabled {
		return
	}

	entry := Entry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Tool:      tool,
		Args:      jsonSafe(args),
		Result:    jsonSafe(result),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[len(l.entries)-MaxEntries:]
	}
}

// Snapshots returns the recorded history, oldest first.
func (l *Log) Snapshots() map[string]any {
	if !l.enabled {
		return map[string]any{
			"error": "History feature is disabled. Enable feature_history to use it.",
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return map[string]any{
		"snapshots": out,
		"count":     len(out),
	}
}

// Len reports the number of stored entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// jsonSafe round-trips m through JSON so every stored value is
// serializable. Unserializable maps collapse into a string form.
func jsonSafe(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return map[string]any{"data": fmt.Sprintf("%v", m)}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"data": string(raw)}
	}
	return out
}

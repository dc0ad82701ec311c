// Package audit captures session events (user messages, tool calls, fallback
// activations) to a JSONL file for debugging and reproducibility.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// EventType represents the type of audit event.
type EventType string

const (
	// EventTypeSessionStart marks the start of a new session.
	EventTypeSessionStart EventType = "session_start"
	// EventTypeUserMessage marks a user input message.
	EventTypeUserMessage EventType = "user_message"
	// EventTypeToolStart marks the start of a tool call.
	EventTypeToolStart EventType = "tool_start"
	// EventTypeToolComplete marks the completion of a tool call.
	EventTypeToolComplete EventType = "tool_complete"
	// EventTypeSafetyHalt marks a turn halted by the dangerous-tool gate.
	EventTypeSafetyHalt EventType = "safety_halt"
	// EventTypeFallback marks a fallback narration.
	EventTypeFallback EventType = "fallback"
	// EventTypeTurnComplete marks the completion of one chat turn.
	EventTypeTurnComplete EventType = "turn_complete"
	// EventTypeError marks an error during processing.
	EventTypeError EventType = "error"
	// EventTypeSessionEnd marks the end of a session.
	EventTypeSessionEnd EventType = "session_end"
)

// Event is a single audit log line.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Data      map[string]any `json:"data,omitempty"`
}

// Logger writes audit events to a JSONL file.
type Logger struct {
	file      *os.File
	writer    *bufio.Writer
	mutex     sync.Mutex
	sessionID string
}

// NewLogger opens (or appends to) the audit log at filePath.
func NewLogger(filePath, sessionID string) (*Logger, error) {
	// #nosec G304 -- Audit log path is intentionally configurable by user
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &Logger{
		file:      file,
		writer:    bufio.NewWriter(file),
		sessionID: sessionID,
	}, nil
}

func (l *Logger) write(event Event) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	if _, err := l.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	// Flush immediately for crash safety
	return l.writer.Flush()
}

// LogSessionStart logs the start of a new session.
func (l *Logger) LogSessionStart(mode, model string) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeSessionStart,
		SessionID: l.sessionID,
		Data: map[string]any{
			"mode":  mode,
			"model": model,
		},
	})
}

// LogUserMessage logs a user input message.
func (l *Logger) LogUserMessage(message string) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeUserMessage,
		SessionID: l.sessionID,
		Data: map[string]any{
			"message": message,
		},
	})
}

// LogToolStart logs the start of a tool call.
func (l *Logger) LogToolStart(toolName string, args map[string]any) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeToolStart,
		SessionID: l.sessionID,
		Data: map[string]any{
			"tool_name": toolName,
			"args":      args,
		},
	})
}

// LogToolComplete logs the completion of a tool call.
func (l *Logger) LogToolComplete(toolName string, duration time.Duration, result any) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeToolComplete,
		SessionID: l.sessionID,
		Data: map[string]any{
			"tool_name":   toolName,
			"duration_ms": duration.Milliseconds(),
			"result":      result,
		},
	})
}

// LogSafetyHalt logs a turn halted before executing a dangerous tool.
func (l *Logger) LogSafetyHalt(toolName string) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeSafetyHalt,
		SessionID: l.sessionID,
		Data: map[string]any{
			"tool_name": toolName,
		},
	})
}

// LogFallback logs a fallback narration with its trigger reason.
func (l *Logger) LogFallback(reason string) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeFallback,
		SessionID: l.sessionID,
		Data: map[string]any{
			"reason": reason,
		},
	})
}

// LogTurnComplete logs one finished chat turn.
func (l *Logger) LogTurnComplete(toolCount int, fallbackUsed bool, duration time.Duration) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeTurnComplete,
		SessionID: l.sessionID,
		Data: map[string]any{
			"tool_count":    toolCount,
			"fallback_used": fallbackUsed,
			"duration_ms":   duration.Milliseconds(),
		},
	})
}

// LogError logs an error during processing.
func (l *Logger) LogError(err error) error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeError,
		SessionID: l.sessionID,
		Data: map[string]any{
			"error": err.Error(),
		},
	})
}

// LogSessionEnd logs the end of a session.
func (l *Logger) LogSessionEnd() error {
	return l.write(Event{
		Timestamp: time.Now(),
		Type:      EventTypeSessionEnd,
		SessionID: l.sessionID,
	})
}

// Close flushes and closes the audit log.
func (l *Logger) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.writer.Flush(); err != nil {
		_ = l.file.Close()
		return fmt.Errorf("failed to flush audit log: %w", err)
	}
	return l.file.Close()
}

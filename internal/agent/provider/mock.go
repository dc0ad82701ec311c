package provider

import (
	"context"
	"fmt"
)

// ScriptedStep is one canned provider reply or error.
type ScriptedStep struct {
	Response *Response
	Err      error
}

// ScriptedProvider replays a fixed sequence of responses. Used by tests to
// drive the orchestration loop without a real model.
type ScriptedProvider struct {
	Steps []ScriptedStep

	// Calls records every Chat invocation's history for assertions.
	Calls [][]Message

	next int
}

// Chat returns the next scripted step.
func (s *ScriptedProvider) Chat(_ context.Context, _ string, history []Message, _ []Declaration) (*Response, error) {
	snapshot := make([]Message, len(history))
	copy(snapshot, history)
	s.Calls = append(s.Calls, snapshot)

	if s.next >= len(s.Steps) {
		return nil, fmt.Errorf("scripted provider exhausted after %d steps", len(s.Steps))
	}
	step := s.Steps[s.next]
	s.next++
	if step.Err != nil {
		return nil, step.Err
	}
	return step.Response, nil
}

// StaticNarrator returns a fixed explanation, or an error.
type StaticNarrator struct {
	Text string
	Err  error

	// LastReason records the reason passed to the most recent Explain call.
	LastReason string
}

func (s *StaticNarrator) Explain(_ context.Context, _, _, reason string) (string, error) {
	s.LastReason = reason
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

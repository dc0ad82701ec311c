package bridge

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerStartsInDemoMode(t *testing.T) {
	m := NewManager(zerolog.Nop())

	st := m.State()
	assert.Equal(t, "demo", st.Mode)
	assert.True(t, st.Connected)
}

func TestManagerConfigureValidation(t *testing.T) {
	m := NewManager(zerolog.Nop())
	ctx := context.Background()

	err := m.Configure(ctx, "live", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a server URL")

	err = m.Configure(ctx, "staging", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")

	// Failed reconfigurations leave the current backend in place.
	assert.Equal(t, "demo", m.State().Mode)
}

func TestManagerConfigureReplacesBackend(t *testing.T) {
	m := NewManager(zerolog.Nop())
	old := m.Current()

	require.NoError(t, m.Configure(context.Background(), "demo", "", ""))

	// A fresh handle, not the old one.
	assert.NotSame(t, old, m.Current())

	// The old handle keeps working for in-flight callers.
	got := old.BatteryReport(context.Background())
	assert.Equal(t, true, got["demo_mode"])
}

package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Manager holds the process-wide backend handle. Reconfiguration replaces
// the backend atomically; callers holding the old handle keep using it until
// they fetch a fresh one, so an in-flight turn is never interrupted by a
// mode switch.
type Manager struct {
	mu      sync.RWMutex
	log     zerolog.Logger
	current Backend
}

// NewManager starts with a demo backend.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:     log,
		current: NewDemoBackend(log),
	}
}

// Current returns the active backend.
func (m *Manager) Current() Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// State reports the active backend's connection state.
func (m *Manager) State() ConnectionState {
	return m.Current().State()
}

// Configure replaces the backend. mode is "demo" or "live"; url and token
// only apply to live mode. The previous live backend is closed. A live
// backend that cannot reach its server is still installed: it reports its
// connection error through every operation, matching demo/live parity.
func (m *Manager) Configure(ctx context.Context, mode, url, token string) error {
	var next Backend
	switch mode {
	case "demo":
		next = NewDemoBackend(m.log)
	case "live":
		if url == "" {
			return fmt.Errorf("live mode requires a server URL")
		}
		next = NewLiveBackend(ctx, url, token, m.log)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	m.mu.Lock()
	prev := m.current
	m.current = next
	m.mu.Unlock()

	if lb, ok := prev.(*LiveBackend); ok {
		if err := lb.Close(); err != nil {
			m.log.Warn().Err(err).Msg("failed to close previous live backend")
		}
	}

	m.log.Info().Str("mode", mode).Msg("backend reconfigured")
	return nil
}

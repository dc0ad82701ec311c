// Package apiserver exposes the agent over HTTP. It is the consumption
// contract for any UI: chat, full-report, session reset, backend
// configuration, tool listing, health and metrics.
package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/tools"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/bridge"
	"github.com/rs/zerolog"
)

// RebuildFunc creates a registry and agent session for a backend. The server
// calls it at startup and after every reconfiguration, so a mode switch
// always yields a fresh session against the new backend.
type RebuildFunc func(b bridge.Backend) (*tools.Registry, *agent.Agent)

// Server is the HTTP API server.
type Server struct {
	port   int
	log    zerolog.Logger
	server *http.Server
	router *http.ServeMux

	manager *bridge.Manager
	rebuild RebuildFunc

	mu       sync.RWMutex
	registry *tools.Registry
	agent    *agent.Agent
}

// New creates the API server and builds the initial agent session.
func New(port int, manager *bridge.Manager, rebuild RebuildFunc, log zerolog.Logger) *Server {
	s := &Server{
		port:    port,
		log:     log,
		router:  http.NewServeMux(),
		manager: manager,
		rebuild: rebuild,
	}
	s.registry, s.agent = rebuild(manager.Current())

	s.registerHandlers()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.corsMiddleware(s.loggingMiddleware(s.router)),
		ReadTimeout:  time.Minute,
		WriteTimeout: 10 * time.Minute, // turns may run many tool calls
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. It blocks until the listener fails or Stop is
// called.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("starting API server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info().Msg("stopping API server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// session returns the current registry and agent handle. In-flight requests
// keep the handle they fetched; reconfiguration swaps in a new one for
// subsequent requests.
func (s *Server) session() (*tools.Registry, *agent.Agent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry, s.agent
}

// reconfigure replaces the backend and rebuilds the session.
func (s *Server) reconfigure(ctx context.Context, mode, url, token string) error {
	if err := s.manager.Configure(ctx, mode, url, token); err != nil {
		return err
	}
	registry, ag := s.rebuild(s.manager.Current())

	s.mu.Lock()
	s.registry = registry
	s.agent = ag
	s.mu.Unlock()
	return nil
}

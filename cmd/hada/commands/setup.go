package commands

import (
	"context"
	"fmt"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/audit"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/provider"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/tools"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/bridge"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/config"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/knowledge"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/snapshot"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/pkg/logger"
	"github.com/google/uuid"
)

// runtime bundles everything a subcommand needs: the configured backend
// manager, a factory that builds a registry and agent session for any
// backend, and the optional audit logger.
type runtime struct {
	cfg     *config.Config
	manager *bridge.Manager
	rebuild func(b bridge.Backend) (*tools.Registry, *agent.Agent)
	audit   *audit.Logger
}

// buildRuntime loads configuration and wires the application together.
func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger.Init(cfg.LogLevel)

	manager := bridge.NewManager(logger.Component("bridge"))
	if config.Mode(cfg.Mode) == config.ModeLive {
		if err := manager.Configure(ctx, cfg.Mode, cfg.HAURL, cfg.HAToken); err != nil {
			return nil, fmt.Errorf("failed to configure live backend: %w", err)
		}
	}

	kb := knowledge.New(cfg.FeatureKnowledge, bridge.DemoDataset(), cfg.ResourcesDir, logger.Component("knowledge"))
	snapshots := snapshot.NewLog(cfg.FeatureHistory)

	var primary provider.Provider
	if cfg.GeminiAPIKey != "" {
		p, err := provider.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger.Component("gemini"))
		if err != nil {
			return nil, fmt.Errorf("failed to create primary model client: %w", err)
		}
		primary = p
	}

	var narrator provider.Narrator
	if cfg.AnthropicAPIKey != "" {
		n, err := provider.NewAnthropicNarrator(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger.Component("narrator"))
		if err != nil {
			return nil, fmt.Errorf("failed to create narrator client: %w", err)
		}
		narrator = n
	}

	var auditLog *audit.Logger
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.NewLogger(cfg.AuditLogPath, uuid.NewString())
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		_ = auditLog.LogSessionStart(cfg.Mode, cfg.GeminiModel)
	}

	rebuild := func(b bridge.Backend) (*tools.Registry, *agent.Agent) {
		registry := tools.NewRegistry(tools.Options{
			Backend:   b,
			Knowledge: kb,
			Snapshots: snapshots,
			Logger:    logger.Component("tools"),
		})
		return registry, agent.New(agent.Options{
			Primary:  primary,
			Narrator: narrator,
			Registry: registry,
			Audit:    auditLog,
			Logger:   logger.Component("agent"),
		})
	}

	return &runtime{
		cfg:     cfg,
		manager: manager,
		rebuild: rebuild,
		audit:   auditLog,
	}, nil
}

// close releases runtime resources.
func (rt *runtime) close() {
	if rt.audit != nil {
		_ = rt.audit.LogSessionEnd()
		_ = rt.audit.Close()
	}
	if lb, ok := rt.manager.Current().(*bridge.LiveBackend); ok {
		_ = lb.Close()
	}
}

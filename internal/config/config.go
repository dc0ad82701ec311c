// Package config loads application configuration from defaults, an optional
// YAML file and HADA_-prefixed environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Mode selects the data source behind the bridge.
type Mode string

const (
	// ModeDemo serves pre-recorded diagnostic payloads.
	ModeDemo Mode = "demo"
	// ModeLive proxies to a Home Assistant diagnostics MCP server.
	ModeLive Mode = "live"
)

// Config holds all configuration for the application.
type Config struct {
	// Mode is the initial bridge mode (demo or live).
	Mode string `koanf:"mode"`

	// HAURL is the base URL of the Home Assistant diagnostics MCP server.
	HAURL string `koanf:"ha_url"`

	// HAToken is the long-lived access token for the MCP server.
	HAToken string `koanf:"ha_token"`

	// GeminiAPIKey enables the primary model. Empty means the agent runs
	// without a primary model and relies on the fallback narrator.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiModel is the primary model identifier.
	GeminiModel string `koanf:"gemini_model"`

	// AnthropicAPIKey enables the fallback narrator.
	AnthropicAPIKey string `koanf:"anthropic_api_key"`

	// AnthropicModel is the fallback model identifier.
	AnthropicModel string `koanf:"anthropic_model"`

	// FeatureKnowledge gates the query_diagnostics_knowledge tool.
	FeatureKnowledge bool `koanf:"feature_knowledge"`

	// FeatureHistory gates the snapshot log and the
	// query_diagnostic_history tool.
	FeatureHistory bool `koanf:"feature_history"`

	// ResourcesDir holds optional markdown documents for the knowledge base.
	ResourcesDir string `koanf:"resources_dir"`

	// APIPort is the port the API server listens on.
	APIPort int `koanf:"api_port"`

	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`

	// AuditLogPath is where the session audit log (JSONL) is written.
	// Empty disables audit logging.
	AuditLogPath string `koanf:"audit_log_path"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"mode":            string(ModeDemo),
		"gemini_model":    "gemini-2.0-flash",
		"anthropic_model": "claude-3-5-haiku-20241022",
		"api_port":        8099,
		"log_level":       "info",
	}
}

// Load builds the configuration. configPath may be empty, in which case only
// defaults and environment variables apply. A .env file in the working
// directory is honored if present.
func Load(configPath string) (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %q: %w", configPath, err)
		}
	}

	// HADA_GEMINI_API_KEY -> gemini_api_key
	if err := k.Load(env.Provider("HADA_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "HADA_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	switch Mode(c.Mode) {
	case ModeDemo, ModeLive:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDemo, ModeLive, c.Mode)
	}

	if Mode(c.Mode) == ModeLive && c.HAURL == "" {
		return fmt.Errorf("ha_url must be set in live mode")
	}

	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("api_port must be between 1 and 65535, got %d", c.APIPort)
	}

	return nil
}

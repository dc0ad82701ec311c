package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, string(ModeDemo), cfg.Mode)
	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, 8099, cfg.APIPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.FeatureKnowledge)
	assert.False(t, cfg.FeatureHistory)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
mode: live
ha_url: http://homeassistant.local:8123/mcp
ha_token: test-token
feature_history: true
api_port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, string(ModeLive), cfg.Mode)
	assert.Equal(t, "http://homeassistant.local:8123/mcp", cfg.HAURL)
	assert.Equal(t, "test-token", cfg.HAToken)
	assert.True(t, cfg.FeatureHistory)
	assert.Equal(t, 9000, cfg.APIPort)
	// File values do not disturb unrelated defaults.
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	t.Setenv("HADA_LOG_LEVEL", "error")
	t.Setenv("HADA_GEMINI_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "env-key", cfg.GeminiAPIKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "demo mode needs nothing",
			cfg:  Config{Mode: "demo", APIPort: 8099},
		},
		{
			name:    "unknown mode",
			cfg:     Config{Mode: "staging", APIPort: 8099},
			wantErr: "mode must be",
		},
		{
			name:    "live mode requires ha_url",
			cfg:     Config{Mode: "live", APIPort: 8099},
			wantErr: "ha_url must be set",
		},
		{
			name: "live mode with url",
			cfg:  Config{Mode: "live", HAURL: "http://ha:8123/mcp", APIPort: 8099},
		},
		{
			name:    "port out of range",
			cfg:     Config{Mode: "demo", APIPort: 70000},
			wantErr: "api_port must be between",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

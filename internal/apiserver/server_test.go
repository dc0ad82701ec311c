package apiserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/provider"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/agent/tools"
	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/bridge"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, primary provider.Provider) *httptest.Server {
	t.Helper()
	manager := bridge.NewManager(zerolog.Nop())
	rebuild := func(b bridge.Backend) (*tools.Registry, *agent.Agent) {
		registry := tools.NewRegistry(tools.Options{Backend: b, Logger: zerolog.Nop()})
		return registry, agent.New(agent.Options{
			Primary:  primary,
			Registry: registry,
			Logger:   zerolog.Nop(),
		})
	}
	s := New(0, manager, rebuild, zerolog.Nop())
	ts := httptest.NewServer(s.server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "demo", body["mode"])
}

func TestChatEndpoint(t *testing.T) {
	p := &provider.ScriptedProvider{Steps: []provider.ScriptedStep{
		{Response: &provider.Response{ToolCalls: []provider.ToolCall{{Name: "battery_report"}}}},
		{Response: &provider.Response{Text: "Three sensors are low on battery."}},
	}}
	ts := newTestServer(t, p)

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{"message": "check batteries"})
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Three sensors are low on battery.", body["text"])
	assert.NotEmpty(t, body["session_id"])

	used, ok := body["tools_used"].([]any)
	require.True(t, ok)
	require.Len(t, used, 1)
	first := used[0].(map[string]any)
	assert.Equal(t, "battery_report", first["name"])
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/chat", map[string]string{"message": ""})
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", body["error"])
}

func TestChatEndpointMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/v1/chat")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body["error"])
}

func TestReportEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/report", map[string]string{})
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 83.0, body["overall_health_score"])
	assert.Equal(t, true, body["demo_mode"])

	diagnostics, ok := body["diagnostics"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"system", "zigbee_mesh", "orphan_entities", "automation_conflicts", "energy", "battery", "repairs", "updates"} {
		assert.Contains(t, diagnostics, key)
	}
}

func TestSessionResetEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	first := decodeBody(t, postJSON(t, ts.URL+"/v1/session/reset", map[string]string{}))
	second := decodeBody(t, postJSON(t, ts.URL+"/v1/session/reset", map[string]string{}))

	assert.Equal(t, "reset", first["status"])
	assert.NotEmpty(t, first["session_id"])
	assert.NotEqual(t, first["session_id"], second["session_id"])
}

func TestToolsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/v1/tools")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(16), body["count"])

	toolList, ok := body["tools"].([]any)
	require.True(t, ok)
	first := toolList[0].(map[string]any)
	assert.Equal(t, "diagnose_system", first["name"])
	assert.NotEmpty(t, first["description"])
}

func TestConfigureEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	t.Run("rejects unknown mode", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/v1/configure", map[string]string{"mode": "hybrid"})
		body := decodeBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "CONFIGURE_FAILED", body["error"])
	})

	t.Run("rejects live without url", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/v1/configure", map[string]string{"mode": "live"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("demo mode succeeds", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/v1/configure", map[string]string{"mode": "demo"})
		body := decodeBody(t, resp)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "configured", body["status"])

		state, ok := body["state"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "demo", state["mode"])
		assert.Equal(t, true, state["connected"])
	})
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/chat", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

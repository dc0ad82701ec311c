package apiserver

import (
	"encoding/json"
	"net/http"

	"github.com/burgueishon/Home-Assistant-Diagnostics-Agent/internal/bridge"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerHandlers registers all HTTP handlers.
func (s *Server) registerHandlers() {
	s.router.HandleFunc("/v1/chat", s.withMethod(http.MethodPost, s.handleChat))
	s.router.HandleFunc("/v1/report", s.withMethod(http.MethodPost, s.handleReport))
	s.router.HandleFunc("/v1/session/reset", s.withMethod(http.MethodPost, s.handleSessionReset))
	s.router.HandleFunc("/v1/configure", s.withMethod(http.MethodPost, s.handleConfigure))
	s.router.HandleFunc("/v1/tools", s.withMethod(http.MethodGet, s.handleTools))
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	SessionID            string         `json:"session_id"`
	Text                 string         `json:"text"`
	ToolsUsed            []toolCallView `json:"tools_used"`
	FallbackUsed         bool           `json:"fallback_used"`
	Truncated            bool           `json:"truncated"`
	ConfirmationRequired bool           `json:"confirmation_required"`
}

type toolCallView struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args,omitempty"`
	Result map[string]any `json:"result"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON with a message field")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "message must not be empty")
		return
	}

	_, ag := s.session()
	result := ag.Chat(r.Context(), req.Message)

	resp := chatResponse{
		SessionID:            ag.SessionID(),
		Text:                 result.Text,
		ToolsUsed:            make([]toolCallView, 0, len(result.ToolsUsed)),
		FallbackUsed:         result.FallbackUsed,
		Truncated:            result.Truncated,
		ConfirmationRequired: result.ConfirmationRequired,
	}
	for _, rec := range result.ToolsUsed {
		resp.ToolsUsed = append(resp.ToolsUsed, toolCallView{Name: rec.Name, Args: rec.Args, Result: rec.Result})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := bridge.RunFullDiagnostics(r.Context(), s.manager.Current())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	_, ag := s.session()
	ag.Reset()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "reset",
		"session_id": ag.SessionID(),
	})
}

type configureRequest struct {
	Mode    string `json:"mode"`
	HAURL   string `json:"ha_url"`
	HAToken string `json:"ha_token"`
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var req configureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be JSON")
		return
	}

	if err := s.reconfigure(r.Context(), req.Mode, req.HAURL, req.HAToken); err != nil {
		writeError(w, http.StatusBadRequest, "CONFIGURE_FAILED", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "configured",
		"state":  s.manager.State(),
	})
}

type toolView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	registry, _ := s.session()

	decls := registry.Declarations()
	views := make([]toolView, 0, len(decls))
	for _, d := range decls {
		views = append(views, toolView{Name: d.Name, Description: d.Description})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tools": views,
		"count": len(views),
		"state": s.manager.State(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"mode":   s.manager.State().Mode,
	})
}

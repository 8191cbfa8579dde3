// Package toolhttp exposes the tool catalog and execution bridge over a
// small REST surface consumed by the workflow editor and the agent runner.
package toolhttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/agentstudio/toolbridge/internal/usecase"
	"github.com/agentstudio/toolbridge/pkg/llmschema"
)

// Handlers struct holds dependencies for the HTTP handlers.
type Handlers struct {
	listUC    *usecase.ListToolsUseCase
	executeUC *usecase.ExecuteToolUseCase
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers struct.
func NewHandlers(listUC *usecase.ListToolsUseCase, executeUC *usecase.ExecuteToolUseCase, logger *slog.Logger) *Handlers {
	return &Handlers{
		listUC:    listUC,
		executeUC: executeUC,
		logger:    logger.With("component", "toolhttp_handler"),
	}
}

// RegisterRoutes sets up the HTTP routes for the tool API.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /tools", h.handleListTools)
	mux.HandleFunc("GET /tools/schema", h.handleSchema)
	mux.HandleFunc("GET /tools/{id}", h.handleGetTool)
	mux.HandleFunc("POST /tools/execute", h.handleExecuteTool)
}

// handleListTools implements GET /tools. Query parameters: category,
// enabled_only (default true, pass enabled_only=false to include disabled).
func (h *Handlers) handleListTools(w http.ResponseWriter, r *http.Request) {
	filter := usecase.ListFilter{
		Category:    r.URL.Query().Get("category"),
		EnabledOnly: r.URL.Query().Get("enabled_only") != "false",
	}
	descs := h.listUC.Execute(r.Context(), filter)
	writeJSON(w, http.StatusOK, descs, h.logger)
}

// handleGetTool implements GET /tools/{id}.
func (h *Handlers) handleGetTool(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	desc, err := h.listUC.Describe(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrToolNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "tool not found: " + id}, h.logger)
			return
		}
		h.logger.Error("Failed to describe tool", slog.String("tool_id", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()}, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, desc, h.logger)
}

// handleSchema implements GET /tools/schema. The default format is the
// OpenAI function-calling shape; format=mcp returns MCP tool definitions.
func (h *Handlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	descs := h.listUC.Execute(r.Context(), usecase.ListFilter{EnabledOnly: true})
	switch format := r.URL.Query().Get("format"); format {
	case "", "openai":
		writeJSON(w, http.StatusOK, llmschema.OpenAITools(descs), h.logger)
	case "mcp":
		writeJSON(w, http.StatusOK, llmschema.MCPTools(descs), h.logger)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown schema format: " + format}, h.logger)
	}
}

// ExecuteRequest defines the expected JSON body for POST /tools/execute.
type ExecuteRequest struct {
	ToolID     string         `json:"tool_id"`
	Parameters map[string]any `json:"parameters"`
	Config     map[string]any `json:"config,omitempty"`
}

// handleExecuteTool implements POST /tools/execute. Tool failures are part
// of the result envelope and still answer 200; only a malformed request is
// an HTTP error.
func (h *Handlers) handleExecuteTool(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode execute request body", slog.Any("error", err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()}, h.logger)
		return
	}
	defer r.Body.Close()

	if req.ToolID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing 'tool_id' field in request body"}, h.logger)
		return
	}

	result := h.executeUC.Execute(r.Context(), req.ToolID, req.Parameters, req.Config)
	writeJSON(w, http.StatusOK, result, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

// Package mcp serves the nutrition parser and the dietitian as MCP tool
// calls over plain HTTP POST.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"github.com/edgard/lifesync/internal/gemini"
	"github.com/edgard/lifesync/internal/nutrition"
)

const (
	ToolCalculateNutrition = "calculate_nutrition"
	ToolAskDietitian       = "ask_dietitian"

	maxBodyBytes = 1 << 20
)

var errInvalidParams = errors.New("invalid parameters")

type toolFunc func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// Handler dispatches CallToolRequest bodies by tool name.
type Handler struct {
	tools map[string]toolFunc
	log   *slog.Logger
}

// NewHandler registers the tools backed by parser and dietitian.
func NewHandler(parser *nutrition.Parser, dietitian gemini.Asker, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{log: log.With("component", "mcp")}
	h.tools = map[string]toolFunc{
		ToolCalculateNutrition: func(_ context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
			var p struct {
				Query  string `json:"query"`
				Detail bool   `json:"detail"`
			}
			if err := extractParams(req, &p); err != nil {
				return nil, err
			}
			if p.Detail {
				return jsonResult(parser.Analyze(p.Query))
			}
			return jsonResult(parser.Parse(p.Query))
		},
		ToolAskDietitian: func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
			var p struct {
				Message string `json:"message"`
			}
			if err := extractParams(req, &p); err != nil {
				return nil, err
			}
			if strings.TrimSpace(p.Message) == "" {
				return nil, fmt.Errorf("%w: message is required", errInvalidParams)
			}
			return textResult(dietitian.Ask(ctx, p.Message)), nil
		},
	}
	return h
}

// Tools lists the registered tool names.
func (h *Handler) Tools() []string {
	names := make([]string, 0, len(h.tools))
	for name := range h.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req protocol.CallToolRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	tool, ok := h.tools[req.Name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown tool: %s", req.Name))
		return
	}

	result, err := tool(r.Context(), &req)
	switch {
	case errors.Is(err, errInvalidParams):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.ErrorContext(r.Context(), "Tool call failed", "tool", req.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "tool call failed")
		return
	}

	h.log.DebugContext(r.Context(), "Tool call handled", "tool", req.Name)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.log.WarnContext(r.Context(), "Failed to encode tool result", "tool", req.Name, "error", err)
	}
}

// extractParams round-trips the argument map through JSON into target.
func extractParams(req *protocol.CallToolRequest, target any) error {
	raw, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidParams, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: %w", errInvalidParams, err)
	}
	return nil
}

func textResult(text string) *protocol.CallToolResult {
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{Type: "text", Text: text},
		},
	}
}

func jsonResult(v any) (*protocol.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return textResult(string(b)), nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

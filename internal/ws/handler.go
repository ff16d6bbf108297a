package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/agent"
	"github.com/coder/websocket"
)

// TurnProcessor runs one planning turn and returns its envelope.
type TurnProcessor interface {
	Process(ctx context.Context, req agent.Request) *agent.Response
}

// Handler serves the duplex planning channel: one JSON request per inbound
// message, one envelope per turn.
type Handler struct {
	assistant     TurnProcessor
	registry      *Registry
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a new WebSocket handler.
func NewHandler(assistant TurnProcessor, registry *Registry, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		assistant:     assistant,
		registry:      registry,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP upgrades the connection and runs the turn loop until the client
// disconnects.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slog.Info("WebSocket connection request", "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := conn.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	var sessionID string
	defer func() {
		if sessionID != "" {
			h.registry.Unregister(sessionID, conn)
		}
	}()

	for {
		_, raw, err := conn.Read(r.Context())
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Info("Client disconnected", "session_id", sessionID)
			} else {
				slog.Warn("WebSocket read error", "error", err, "session_id", sessionID)
			}
			return
		}

		var req agent.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			// Malformed input never reaches the orchestrator.
			h.writeJSON(conn, &agent.Response{
				Success: false,
				Message: "Invalid JSON format",
			})
			continue
		}

		// The turn runs detached from the connection's lifetime: if the
		// client disconnects mid-flight, write-through still completes.
		resp := h.assistant.Process(context.WithoutCancel(r.Context()), req)

		if resp.Data != nil && resp.Data.SessionID != sessionID {
			if sessionID != "" {
				h.registry.Unregister(sessionID, conn)
			}
			sessionID = resp.Data.SessionID
			h.registry.Register(sessionID, conn)
		}

		h.writeJSON(conn, resp)
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) writeJSON(conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal response", "error", err)
		return
	}
	if err := conn.Write(context.Background(), websocket.MessageText, data); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

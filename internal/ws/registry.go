// Package ws provides the WebSocket planning channel.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Registry tracks live WebSocket connections keyed by session id. The
// transport layer owns it exclusively; the rest of the system reaches
// connections only through Notify and CloseSession.
type Registry struct {
	mu     sync.RWMutex
	active map[string]*websocket.Conn
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[string]*websocket.Conn),
	}
}

// Register binds a connection to a session id, replacing any previous one.
func (r *Registry) Register(sessionID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.active[sessionID]; ok && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "session replaced")
	}
	r.active[sessionID] = conn
	slog.Info("Planning session registered", "session_id", sessionID)
}

// Unregister removes the binding if conn is still the registered connection.
func (r *Registry) Unregister(sessionID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.active[sessionID]; ok && current == conn {
		delete(r.active, sessionID)
		slog.Info("Planning session unregistered", "session_id", sessionID)
	}
}

// Get returns the live connection for a session id, or nil.
func (r *Registry) Get(sessionID string) *websocket.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[sessionID]
}

// Notify sends a JSON payload to the session's live connection, if any.
// Returns false when there is no connection or the write fails.
func (r *Registry) Notify(sessionID string, payload any) bool {
	conn := r.Get(sessionID)
	if conn == nil {
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("Failed to marshal notification", "session_id", sessionID, "error", err)
		return false
	}
	if err := conn.Write(context.Background(), websocket.MessageText, data); err != nil {
		slog.Debug("Failed to notify session", "session_id", sessionID, "error", err)
		return false
	}
	return true
}

// CloseSession terminates the live connection for a session id, if any.
func (r *Registry) CloseSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.active[sessionID]
	if !ok {
		return
	}
	_ = conn.Close(websocket.StatusNormalClosure, "session closed")
	delete(r.active, sessionID)
	slog.Info("Planning session closed", "session_id", sessionID)
}

// Package api provides the HTTP side-channel for session and knowledge
// base management.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/knowledge"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/store"
)

// ConnectionCloser lets the API terminate a session's live transport
// connection without touching the connection table directly.
type ConnectionCloser interface {
	CloseSession(sessionID string)
}

// Handler holds the dependencies shared by the HTTP endpoints.
type Handler struct {
	repo        store.Repository
	kb          *knowledge.Base
	connections ConnectionCloser
}

// NewHandler creates a new Handler.
func NewHandler(repo store.Repository, kb *knowledge.Base, connections ConnectionCloser) *Handler {
	return &Handler{
		repo:        repo,
		kb:          kb,
		connections: connections,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

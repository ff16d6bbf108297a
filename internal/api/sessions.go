package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the session and advice endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/", h.ListSessions)
		r.Get("/{sessionID}", h.GetSession)
		r.Delete("/{sessionID}", h.DeleteSession)
	})
	r.Route("/api/advice", func(r chi.Router) {
		r.Post("/", h.AddAdvice)
		r.Get("/category/{category}", h.AdviceByCategory)
		r.Get("/topic/{topic}", h.AdviceByTopic)
	})
}

// CreateSession allocates a fresh session.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.repo.Create(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	JSON(w, http.StatusCreated, session)
}

// GetSession returns a session by id.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.repo.Get(r.Context(), sessionID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session == nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}
	JSON(w, http.StatusOK, session)
}

// ListSessions returns all active sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.repo.ListActive(r.Context())
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}

// DeleteSession removes a session and closes its live connection, if any.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.repo.Get(r.Context(), sessionID)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session == nil {
		Error(w, http.StatusNotFound, "session not found")
		return
	}

	if h.connections != nil {
		h.connections.CloseSession(sessionID)
	}
	if err := h.repo.Delete(r.Context(), sessionID); err != nil {
		Error(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}

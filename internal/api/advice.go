package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type addAdviceRequest struct {
	Text     string `json:"text"`
	Topic    string `json:"topic"`
	Category string `json:"category"`
}

// AddAdvice appends new reference material to the knowledge base.
func (h *Handler) AddAdvice(w http.ResponseWriter, r *http.Request) {
	var req addAdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		Error(w, http.StatusBadRequest, "text is required")
		return
	}

	if ok := h.kb.Add(r.Context(), req.Text, req.Topic, req.Category); !ok {
		Error(w, http.StatusInternalServerError, "failed to add advice")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Advice added successfully"})
}

// AdviceByCategory returns advice entries with an exactly matching category.
func (h *Handler) AdviceByCategory(w http.ResponseWriter, r *http.Request) {
	advice := h.kb.ByCategory(chi.URLParam(r, "category"))
	JSON(w, http.StatusOK, advice)
}

// AdviceByTopic returns advice entries with an exactly matching topic.
func (h *Handler) AdviceByTopic(w http.ResponseWriter, r *http.Request) {
	advice := h.kb.ByTopic(chi.URLParam(r, "topic"))
	JSON(w, http.StatusOK, advice)
}

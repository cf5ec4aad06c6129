package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/voicestack/beliefgraph/internal/api/middleware"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/service"
)

type TopicHandler struct {
	svc *service.ConfidenceService
}

func NewTopicHandler(svc *service.ConfidenceService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

type scoreTopicRequest struct {
	Topic    string           `json:"topic"`
	Audience *domain.Audience `json:"audience,omitempty"`
}

func (h *TopicHandler) Score(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req scoreTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	result, err := h.svc.Score(r.Context(), user.ID, req.Topic, req.Audience)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to score topic")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *TopicHandler) InferOutcome(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req scoreTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	inference, err := h.svc.InferOutcome(r.Context(), user.ID, req.Topic, req.Audience)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to infer outcome")
		return
	}

	writeJSON(w, http.StatusOK, inference)
}

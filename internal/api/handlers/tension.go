package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/api/middleware"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/service"
	"github.com/voicestack/beliefgraph/internal/store"
)

type TensionHandler struct {
	svc *service.TensionService
}

func NewTensionHandler(svc *service.TensionService) *TensionHandler {
	return &TensionHandler{svc: svc}
}

type listTensionsResponse struct {
	Tensions []domain.Tension `json:"tensions"`
	Count    int              `json:"count"`
}

func (h *TensionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tensions, err := h.svc.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tensions")
		return
	}
	if tensions == nil {
		tensions = []domain.Tension{}
	}

	writeJSON(w, http.StatusOK, listTensionsResponse{Tensions: tensions, Count: len(tensions)})
}

type classifyTensionRequest struct {
	Classification string `json:"classification"`
}

func (h *TensionHandler) Classify(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tension id")
		return
	}

	var req classifyTensionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tension, err := h.svc.Classify(r.Context(), id, user.ID, req.Classification)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClassification):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTensionAlreadyClassified):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "tension not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to classify tension")
		}
		return
	}

	writeJSON(w, http.StatusOK, tension)
}

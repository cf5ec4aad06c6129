package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/api/middleware"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/store"
)

type BeliefHandler struct {
	store domain.BeliefStore
}

func NewBeliefHandler(store domain.BeliefStore) *BeliefHandler {
	return &BeliefHandler{store: store}
}

type listBeliefsResponse struct {
	Beliefs []domain.Belief `json:"beliefs"`
	Count   int             `json:"count"`
}

func (h *BeliefHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var filter domain.BeliefFilter
	if c := r.URL.Query().Get("confirmed"); c != "" {
		confirmed := c == "true"
		filter.Confirmed = &confirmed
	}
	if t := r.URL.Query().Get("type"); t != "" {
		if !domain.ValidBeliefType(t) {
			writeError(w, http.StatusBadRequest, "invalid type parameter")
			return
		}
		bt := domain.BeliefType(t)
		filter.Type = &bt
	}

	beliefs, err := h.store.ListByUser(r.Context(), user.ID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list beliefs")
		return
	}
	if beliefs == nil {
		beliefs = []domain.Belief{}
	}

	writeJSON(w, http.StatusOK, listBeliefsResponse{Beliefs: beliefs, Count: len(beliefs)})
}

func (h *BeliefHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	belief, err := h.store.GetByID(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "belief not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get belief")
		return
	}

	writeJSON(w, http.StatusOK, belief)
}

func (h *BeliefHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid belief id")
		return
	}

	if err := h.store.Confirm(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "belief not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to confirm belief")
		return
	}

	belief, err := h.store.GetByID(r.Context(), id, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load confirmed belief")
		return
	}

	writeJSON(w, http.StatusOK, belief)
}

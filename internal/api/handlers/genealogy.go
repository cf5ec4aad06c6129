package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/api/middleware"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/service"
)

type GenealogyHandler struct {
	svc     *service.GenealogyService
	beliefs domain.BeliefStore
}

func NewGenealogyHandler(svc *service.GenealogyService, beliefs domain.BeliefStore) *GenealogyHandler {
	return &GenealogyHandler{svc: svc, beliefs: beliefs}
}

func (h *GenealogyHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result, err := h.svc.Rebuild(r.Context(), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRebuildInProgress):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrGatewayUnavailable), errors.Is(err, domain.ErrMalformedOutput):
			writeError(w, http.StatusBadGateway, "genealogy proposal failed")
		default:
			writeError(w, http.StatusInternalServerError, "failed to rebuild genealogy")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// genealogyNode is one belief in the rendered forest, children ordered by
// creation time.
type genealogyNode struct {
	Belief   domain.Belief    `json:"belief"`
	Children []*genealogyNode `json:"children"`
}

type genealogyResponse struct {
	Roots   []*genealogyNode `json:"roots"`
	Orphans []domain.Belief  `json:"orphans"`
	Beliefs int              `json:"belief_count"`
}

// Get renders the current genealogy as a forest. Beliefs whose parent chain
// is broken (parent deleted out from under them) are listed as orphans rather
// than silently dropped.
func (h *GenealogyHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	beliefs, err := h.beliefs.ListByUser(r.Context(), user.ID, domain.BeliefFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list beliefs")
		return
	}

	nodes := make(map[uuid.UUID]*genealogyNode, len(beliefs))
	for i := range beliefs {
		nodes[beliefs[i].ID] = &genealogyNode{Belief: beliefs[i], Children: []*genealogyNode{}}
	}

	resp := genealogyResponse{Roots: []*genealogyNode{}, Orphans: []domain.Belief{}, Beliefs: len(beliefs)}
	for i := range beliefs {
		b := beliefs[i]
		switch {
		case b.ParentID == nil:
			resp.Roots = append(resp.Roots, nodes[b.ID])
		default:
			parent, ok := nodes[*b.ParentID]
			if !ok {
				resp.Orphans = append(resp.Orphans, b)
				continue
			}
			parent.Children = append(parent.Children, nodes[b.ID])
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/voicestack/beliefgraph/internal/api/middleware"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/service"
)

type ExtractionHandler struct {
	svc *service.ExtractionService
}

func NewExtractionHandler(svc *service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{svc: svc}
}

type extractRequest struct {
	Documents     []string `json:"documents"`
	ConfidenceTag string   `json:"confidence_tag,omitempty"`
	AllowFallback bool     `json:"allow_fallback,omitempty"`
}

type extractResponse struct {
	Beliefs  []*domain.Belief  `json:"beliefs"`
	Tensions []*domain.Tension `json:"tensions"`
	Skipped  int               `json:"skipped_duplicates"`
	Fallback bool              `json:"fallback"`
}

func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.svc.Extract(r.Context(), user.ID, req.Documents, req.ConfidenceTag)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoDocuments):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrGatewayUnavailable), errors.Is(err, domain.ErrMalformedOutput):
			if req.AllowFallback {
				h.writeFallback(w)
				return
			}
			writeError(w, http.StatusBadGateway, "belief extraction failed")
		default:
			writeError(w, http.StatusInternalServerError, "failed to extract beliefs")
		}
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Beliefs:  out.Beliefs,
		Tensions: out.Tensions,
		Skipped:  out.Skipped,
	})
}

// writeFallback serves the canned result without persisting anything. The
// fallback beliefs are suggestions for the user to edit, not stored state.
func (h *ExtractionHandler) writeFallback(w http.ResponseWriter) {
	result := service.FallbackExtraction()
	statements := result.Statements()

	beliefs := make([]*domain.Belief, 0, len(statements))
	for i, stmt := range statements {
		beliefs = append(beliefs, &domain.Belief{
			Statement:       stmt,
			Type:            result.TypeForIndex(i),
			ConfidenceScore: domain.ConfidenceFromTag(""),
			ConfidenceLevel: domain.LevelForScore(domain.ConfidenceFromTag("")),
		})
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Beliefs:  beliefs,
		Tensions: []*domain.Tension{},
		Fallback: true,
	})
}

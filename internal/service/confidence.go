package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/domain"
	"go.uber.org/zap"
)

const neutralAlignmentScore = 50

// The two neutral-default reasonings are deliberately distinct so callers and
// tests can tell "no data" apart from "data present but scoring failed".
const (
	reasoningNoBeliefs       = "no confirmed beliefs to compare against; returning a neutral score"
	reasoningScoringFailed   = "alignment scoring failed; returning a neutral score despite available beliefs"
	reasoningOutcomeFallback = "outcome inference unavailable; defaulting to authority"
)

// outcomeHeuristics is the deterministic keyword table for outcome
// inference. Entries are checked in order; the first matching pattern wins
// and no gateway call is made.
var outcomeHeuristics = []struct {
	outcome  domain.OutcomeType
	patterns []string
}{
	{domain.OutcomeAuthority, []string{"how to", "guide", "step-by-step", "framework", "checklist"}},
	{domain.OutcomeEngagement, []string{"?", "story", "what i learned", "unpopular opinion"}},
	{domain.OutcomeConversion, []string{"buy", "sign up", "signup", "offer", "join", "enroll"}},
	{domain.OutcomeConnection, []string{"struggle", "failed", "failure", "hardest", "honest", "vulnerab"}},
}

// ConfidenceService scores how well a candidate topic aligns with a user's
// confirmed belief set and infers missing content outcomes. Not related to
// extraction-time belief confidence, which lives on the Belief itself.
type ConfidenceService struct {
	beliefs   domain.BeliefStore
	llmClient domain.LLMClient
	traces    *TraceRecorder
	logger    *zap.Logger
}

func NewConfidenceService(beliefs domain.BeliefStore, llmClient domain.LLMClient, traces *TraceRecorder, logger *zap.Logger) *ConfidenceService {
	return &ConfidenceService{beliefs: beliefs, llmClient: llmClient, traces: traces, logger: logger}
}

func neutralAlignment(reasoning string) *domain.AlignmentResult {
	return &domain.AlignmentResult{
		Level:     domain.AlignmentMedium,
		Score:     neutralAlignmentScore,
		Reasoning: reasoning,
	}
}

// Score returns a 0–100 alignment between the topic and the user's confirmed
// beliefs. An empty confirmed set and a failed gateway call both produce the
// neutral default; only the reasoning differs. Errors from the gateway are
// recovered here, never surfaced.
func (s *ConfidenceService) Score(ctx context.Context, userID uuid.UUID, topic string, audience *domain.Audience) (*domain.AlignmentResult, error) {
	confirmed, err := s.beliefs.ListConfirmed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list confirmed beliefs: %w", err)
	}

	gwCtx := context.WithoutCancel(ctx)

	if len(confirmed) == 0 {
		result := neutralAlignment(reasoningNoBeliefs)
		s.traces.Record(gwCtx, userID, domain.TraceScoreAlignment,
			map[string]any{"topic": topic, "beliefs": 0},
			map[string]any{"score": result.Score, "level": result.Level, "path": "empty_set"},
			s.llmClient.ModelID(), 0)
		return result, nil
	}

	start := time.Now()
	raw, err := s.llmClient.ScoreAlignment(gwCtx, topic, audience, confirmed)
	latency := time.Since(start)

	if err != nil {
		s.logger.Warn("alignment scoring failed, using neutral default",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		result := neutralAlignment(reasoningScoringFailed)
		s.traces.Record(gwCtx, userID, domain.TraceScoreAlignment,
			map[string]any{"topic": topic, "beliefs": len(confirmed)},
			map[string]any{"score": result.Score, "level": result.Level, "path": "failure_fallback", "error": err.Error()},
			s.llmClient.ModelID(), latency)
		return result, nil
	}

	result := sanitizeAlignment(raw, confirmed)

	s.traces.Record(gwCtx, userID, domain.TraceScoreAlignment,
		map[string]any{"topic": topic, "beliefs": len(confirmed)},
		map[string]any{"score": result.Score, "level": result.Level, "conflicts": len(result.ConflictingBeliefIDs), "path": "model"},
		s.llmClient.ModelID(), latency)

	return result, nil
}

// sanitizeAlignment enforces the result contract on a parsed gateway
// response: score in [0,100], level one of the three buckets, conflicting
// ids restricted to beliefs that were actually in the input set.
func sanitizeAlignment(r *domain.AlignmentResult, beliefs []domain.Belief) *domain.AlignmentResult {
	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score > 100 {
		r.Score = 100
	}
	if !domain.ValidAlignmentLevel(string(r.Level)) {
		r.Level = levelForAlignmentScore(r.Score)
	}

	known := make(map[uuid.UUID]bool, len(beliefs))
	for _, b := range beliefs {
		known[b.ID] = true
	}
	var conflicts []uuid.UUID
	for _, id := range r.ConflictingBeliefIDs {
		if known[id] {
			conflicts = append(conflicts, id)
		}
	}
	r.ConflictingBeliefIDs = conflicts

	return r
}

func levelForAlignmentScore(score int) domain.AlignmentLevel {
	switch {
	case score >= 70:
		return domain.AlignmentHigh
	case score >= 40:
		return domain.AlignmentMedium
	default:
		return domain.AlignmentLow
	}
}

// InferOutcome pre-fills a missing content goal for a topic. The keyword
// table is tried first; only an unmatched topic costs a gateway call, and a
// failed call degrades to authority rather than erroring.
func (s *ConfidenceService) InferOutcome(ctx context.Context, userID uuid.UUID, topic string, audience *domain.Audience) (*domain.OutcomeInference, error) {
	gwCtx := context.WithoutCancel(ctx)
	lower := strings.ToLower(topic)

	for _, h := range outcomeHeuristics {
		for _, p := range h.patterns {
			if strings.Contains(lower, p) {
				inf := &domain.OutcomeInference{
					Outcome:   h.outcome,
					Reasoning: fmt.Sprintf("topic matches %q", p),
					Source:    domain.OutcomeSourceHeuristic,
				}
				s.traces.Record(gwCtx, userID, domain.TraceInferOutcome,
					map[string]any{"topic": topic},
					map[string]any{"outcome": inf.Outcome, "source": inf.Source},
					s.llmClient.ModelID(), 0)
				return inf, nil
			}
		}
	}

	start := time.Now()
	outcome, err := s.llmClient.InferOutcome(gwCtx, topic, audience)
	latency := time.Since(start)

	inf := &domain.OutcomeInference{}
	if err != nil {
		s.logger.Warn("outcome inference failed, defaulting to authority",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		inf.Outcome = domain.OutcomeAuthority
		inf.Reasoning = reasoningOutcomeFallback
		inf.Source = domain.OutcomeSourceFallback
	} else {
		inf.Outcome = outcome
		inf.Reasoning = "inferred by model from topic and audience"
		inf.Source = domain.OutcomeSourceModel
	}

	s.traces.Record(gwCtx, userID, domain.TraceInferOutcome,
		map[string]any{"topic": topic},
		map[string]any{"outcome": inf.Outcome, "source": inf.Source},
		s.llmClient.ModelID(), latency)

	return inf, nil
}

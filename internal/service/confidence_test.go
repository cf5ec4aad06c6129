package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/llm"
	"go.uber.org/zap"
)

func setupConfidenceTest() (*ConfidenceService, *mockBeliefStore, *mockTraceStore, *llm.MockClient, uuid.UUID) {
	beliefStore := newMockBeliefStore()
	traceStore := newMockTraceStore()
	llmClient := llm.NewMockClient()
	logger := zap.NewNop()

	svc := NewConfidenceService(beliefStore, llmClient, NewTraceRecorder(traceStore, logger), logger)
	return svc, beliefStore, traceStore, llmClient, uuid.New()
}

func seedConfirmed(t *testing.T, s *mockBeliefStore, userID uuid.UUID, statements ...string) []*domain.Belief {
	t.Helper()
	beliefs := make([]*domain.Belief, len(statements))
	for i, stmt := range statements {
		beliefs[i] = &domain.Belief{
			UserID:        userID,
			Statement:     stmt,
			Type:          domain.BeliefTypeCore,
			UserConfirmed: true,
		}
	}
	require.NoError(t, s.Insert(context.Background(), beliefs))
	return beliefs
}

func TestConfidenceService_Score_EmptySet(t *testing.T) {
	svc, _, traceStore, llmClient, userID := setupConfidenceTest()

	// Neutral default regardless of topic, and never a gateway call.
	for _, topic := range []string{"pricing strategy", "remote work", ""} {
		result, err := svc.Score(context.Background(), userID, topic, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.AlignmentMedium, result.Level)
		assert.Equal(t, 50, result.Score)
		assert.Equal(t, reasoningNoBeliefs, result.Reasoning)
		assert.Empty(t, result.ConflictingBeliefIDs)
	}
	assert.Empty(t, llmClient.ScoreAlignmentCalls)
	assert.Len(t, traceStore.traces, 3)
}

func TestConfidenceService_Score_GatewayFailure(t *testing.T) {
	svc, beliefStore, _, llmClient, userID := setupConfidenceTest()
	seedConfirmed(t, beliefStore, userID, "Write every day")
	llmClient.ScoreAlignmentError = domain.ErrGatewayUnavailable

	result, err := svc.Score(context.Background(), userID, "consistency", nil)
	require.NoError(t, err, "gateway failure is recovered, not surfaced")
	assert.Equal(t, domain.AlignmentMedium, result.Level)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, reasoningScoringFailed, result.Reasoning)
}

func TestConfidenceService_Score_Model(t *testing.T) {
	svc, beliefStore, traceStore, llmClient, userID := setupConfidenceTest()
	seeded := seedConfirmed(t, beliefStore, userID, "Write every day", "Ship before ready")

	llmClient.ScoreAlignmentResponse = &domain.AlignmentResult{
		Level:                domain.AlignmentHigh,
		Score:                85,
		Reasoning:            "topic directly extends two confirmed beliefs",
		ConflictingBeliefIDs: []uuid.UUID{seeded[1].ID},
	}

	result, err := svc.Score(context.Background(), userID, "daily writing habits", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.AlignmentHigh, result.Level)
	assert.Equal(t, 85, result.Score)
	assert.Equal(t, []uuid.UUID{seeded[1].ID}, result.ConflictingBeliefIDs)
	require.Len(t, traceStore.traces, 1)
	assert.Equal(t, domain.TraceScoreAlignment, traceStore.traces[0].Action)
}

func TestConfidenceService_Score_Sanitization(t *testing.T) {
	svc, beliefStore, _, llmClient, userID := setupConfidenceTest()
	seeded := seedConfirmed(t, beliefStore, userID, "Write every day")

	llmClient.ScoreAlignmentResponse = &domain.AlignmentResult{
		Level:                domain.AlignmentLevel("amazing"),
		Score:                150,
		Reasoning:            "overexcited model",
		ConflictingBeliefIDs: []uuid.UUID{seeded[0].ID, uuid.New()},
	}

	result, err := svc.Score(context.Background(), userID, "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, 100, result.Score, "score clamped to 100")
	assert.Equal(t, domain.AlignmentHigh, result.Level, "invalid level rederived from the clamped score")
	assert.Equal(t, []uuid.UUID{seeded[0].ID}, result.ConflictingBeliefIDs, "unknown conflict ids dropped")
}

func TestConfidenceService_Score_NegativeScoreClamped(t *testing.T) {
	svc, beliefStore, _, llmClient, userID := setupConfidenceTest()
	seedConfirmed(t, beliefStore, userID, "Write every day")

	llmClient.ScoreAlignmentResponse = &domain.AlignmentResult{
		Level: domain.AlignmentLevel("bad"),
		Score: -10,
	}

	result, err := svc.Score(context.Background(), userID, "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, domain.AlignmentLow, result.Level)
}

func TestConfidenceService_Score_TraceFailureSwallowed(t *testing.T) {
	svc, beliefStore, traceStore, _, userID := setupConfidenceTest()
	seedConfirmed(t, beliefStore, userID, "Write every day")
	traceStore.insertErr = assert.AnError

	_, err := svc.Score(context.Background(), userID, "anything", nil)
	assert.NoError(t, err, "trace logging is fire-and-forget")
}

func TestConfidenceService_InferOutcome_Heuristic(t *testing.T) {
	svc, _, traceStore, llmClient, userID := setupConfidenceTest()

	cases := []struct {
		topic string
		want  domain.OutcomeType
	}{
		{"How to scale your startup", domain.OutcomeAuthority},
		{"A step-by-step framework for cold email", domain.OutcomeAuthority},
		{"Is remote work dead?", domain.OutcomeEngagement},
		{"Unpopular opinion about MVPs", domain.OutcomeEngagement},
		{"Sign up for my cohort", domain.OutcomeConversion},
		{"The hardest year of my career", domain.OutcomeConnection},
	}

	for _, tc := range cases {
		inf, err := svc.InferOutcome(context.Background(), userID, tc.topic, nil)
		require.NoError(t, err, tc.topic)
		assert.Equal(t, tc.want, inf.Outcome, tc.topic)
		assert.Equal(t, domain.OutcomeSourceHeuristic, inf.Source, tc.topic)
	}

	assert.Empty(t, llmClient.InferOutcomeCalls, "heuristic matches must not cost gateway calls")
	assert.Len(t, traceStore.traces, len(cases))
}

func TestConfidenceService_InferOutcome_Model(t *testing.T) {
	svc, _, _, llmClient, userID := setupConfidenceTest()
	llmClient.InferOutcomeResponse = domain.OutcomeConnection

	inf, err := svc.InferOutcome(context.Background(), userID, "reflections on a decade in consulting", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeConnection, inf.Outcome)
	assert.Equal(t, domain.OutcomeSourceModel, inf.Source)
	assert.Len(t, llmClient.InferOutcomeCalls, 1)
}

func TestConfidenceService_InferOutcome_Fallback(t *testing.T) {
	svc, _, _, llmClient, userID := setupConfidenceTest()
	llmClient.InferOutcomeError = domain.ErrGatewayUnavailable

	inf, err := svc.InferOutcome(context.Background(), userID, "reflections on a decade in consulting", nil)
	require.NoError(t, err, "inference failure degrades, never errors")
	assert.Equal(t, domain.OutcomeAuthority, inf.Outcome)
	assert.Equal(t, domain.OutcomeSourceFallback, inf.Source)
	assert.Equal(t, reasoningOutcomeFallback, inf.Reasoning)
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/domain"
	"go.uber.org/zap"
)

// TraceRecorder writes decision traces for every engine call. Recording is
// best-effort: a failed write is logged and swallowed, never returned to the
// caller.
type TraceRecorder struct {
	store  domain.TraceStore
	logger *zap.Logger
}

func NewTraceRecorder(store domain.TraceStore, logger *zap.Logger) *TraceRecorder {
	return &TraceRecorder{store: store, logger: logger}
}

func (r *TraceRecorder) Record(ctx context.Context, userID uuid.UUID, action domain.TraceAction, input, output map[string]any, modelID string, latency time.Duration) {
	if r == nil || r.store == nil {
		return
	}

	trace := &domain.DecisionTrace{
		UserID:      userID,
		Action:      action,
		Input:       input,
		Output:      output,
		ModelConfig: map[string]any{"model": modelID},
		LatencyMs:   latency.Milliseconds(),
	}

	if err := r.store.Insert(ctx, trace); err != nil {
		r.logger.Warn("decision trace write failed",
			zap.String("action", string(action)),
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}

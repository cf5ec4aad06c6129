package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voicestack/beliefgraph/internal/domain"
)

// TraceStore is append-only: traces are audit records and are never read back
// by the engine itself.
type TraceStore struct {
	db *pgxpool.Pool
}

func NewTraceStore(db *pgxpool.Pool) *TraceStore {
	return &TraceStore{db: db}
}

func (s *TraceStore) Insert(ctx context.Context, t *domain.DecisionTrace) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO decision_traces (user_id, action, input, output, model_config, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		t.UserID, t.Action, t.Input, t.Output, t.ModelConfig, t.LatencyMs,
	).Scan(&t.ID, &t.CreatedAt)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/voicestack/beliefgraph/internal/domain"
)

type BeliefStore struct {
	db *pgxpool.Pool
}

func NewBeliefStore(db *pgxpool.Pool) *BeliefStore {
	return &BeliefStore{db: db}
}

const beliefColumns = `id, user_id, statement, type, evidence_text, confidence_score, confidence_level, parent_id, user_confirmed, created_at, updated_at`

func scanBelief(row pgx.Row, b *domain.Belief) error {
	return row.Scan(
		&b.ID, &b.UserID, &b.Statement, &b.Type, &b.EvidenceText,
		&b.ConfidenceScore, &b.ConfidenceLevel, &b.ParentID, &b.UserConfirmed,
		&b.CreatedAt, &b.UpdatedAt,
	)
}

func (s *BeliefStore) Insert(ctx context.Context, beliefs []*domain.Belief) error {
	for _, b := range beliefs {
		var embedding *pgvector.Vector
		if len(b.Embedding) > 0 {
			v := pgvector.NewVector(b.Embedding)
			embedding = &v
		}

		err := s.db.QueryRow(ctx,
			`INSERT INTO beliefs (user_id, statement, type, evidence_text, confidence_score, confidence_level, embedding, user_confirmed)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, false)
			 RETURNING id, created_at, updated_at`,
			b.UserID, b.Statement, b.Type, b.EvidenceText, b.ConfidenceScore, b.ConfidenceLevel, embedding,
		).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert belief: %w", err)
		}
	}
	return nil
}

func (s *BeliefStore) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Belief, error) {
	b := &domain.Belief{}
	row := s.db.QueryRow(ctx,
		`SELECT `+beliefColumns+` FROM beliefs WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err := scanBelief(row, b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *BeliefStore) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.BeliefFilter) ([]domain.Belief, error) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Confirmed != nil {
		conditions = append(conditions, fmt.Sprintf("user_confirmed = $%d", len(args)+1))
		args = append(args, *filter.Confirmed)
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, string(*filter.Type))
	}

	query := fmt.Sprintf(
		`SELECT `+beliefColumns+` FROM beliefs WHERE %s ORDER BY created_at ASC`,
		strings.Join(conditions, " AND "),
	)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list beliefs: %w", err)
	}
	defer rows.Close()

	var results []domain.Belief
	for rows.Next() {
		var b domain.Belief
		if err := scanBelief(rows, &b); err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

func (s *BeliefStore) ListConfirmed(ctx context.Context, userID uuid.UUID) ([]domain.Belief, error) {
	confirmed := true
	return s.ListByUser(ctx, userID, domain.BeliefFilter{Confirmed: &confirmed})
}

func (s *BeliefStore) Confirm(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE beliefs SET user_confirmed = true, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateParent overwrites the genealogy link for one belief. Statements are
// immutable; only parent_id and the genealogy role change here.
func (s *BeliefStore) UpdateParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, beliefType domain.BeliefType) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE beliefs SET parent_id = $2, type = $3, updated_at = NOW() WHERE id = $1`,
		id, parentID, beliefType,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BeliefStore) FindSimilarConfirmed(ctx context.Context, userID uuid.UUID, embedding []float32, threshold float32) ([]domain.BeliefWithScore, error) {
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT `+beliefColumns+`, 1 - (embedding <=> $2) AS score
		 FROM beliefs
		 WHERE user_id = $1 AND user_confirmed = true AND embedding IS NOT NULL
		   AND 1 - (embedding <=> $2) >= $3
		 ORDER BY embedding <=> $2
		 LIMIT 5`,
		userID, vec, threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("find similar beliefs: %w", err)
	}
	defer rows.Close()

	var results []domain.BeliefWithScore
	for rows.Next() {
		var bs domain.BeliefWithScore
		err := rows.Scan(
			&bs.ID, &bs.UserID, &bs.Statement, &bs.Type, &bs.EvidenceText,
			&bs.ConfidenceScore, &bs.ConfidenceLevel, &bs.ParentID, &bs.UserConfirmed,
			&bs.CreatedAt, &bs.UpdatedAt, &bs.Score,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, bs)
	}
	return results, rows.Err()
}

// AcquireRebuildLock takes a session-level advisory lock keyed on the user id
// so only one genealogy rebuild per user writes links at a time. The lock is
// held on a dedicated pool connection until release is called.
func (s *BeliefStore) AcquireRebuildLock(ctx context.Context, userID uuid.UUID) (func(), error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	var locked bool
	err = conn.QueryRow(ctx,
		`SELECT pg_try_advisory_lock(hashtextextended($1::text, 0))`,
		userID,
	).Scan(&locked)
	if err != nil {
		conn.Release()
		return nil, fmt.Errorf("advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, ErrLockHeld
	}

	release := func() {
		// Unlock on a background context: release must work even after the
		// request context is done.
		_, _ = conn.Exec(context.Background(),
			`SELECT pg_advisory_unlock(hashtextextended($1::text, 0))`, userID)
		conn.Release()
	}
	return release, nil
}

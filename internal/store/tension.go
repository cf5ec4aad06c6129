package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voicestack/beliefgraph/internal/domain"
)

type TensionStore struct {
	db *pgxpool.Pool
}

func NewTensionStore(db *pgxpool.Pool) *TensionStore {
	return &TensionStore{db: db}
}

const tensionColumns = `id, user_id, belief_a_id, belief_b_id, belief_a_text, belief_b_text, summary, classification, created_at, classified_at`

func scanTension(row pgx.Row, t *domain.Tension) error {
	return row.Scan(
		&t.ID, &t.UserID, &t.BeliefAID, &t.BeliefBID, &t.BeliefAText,
		&t.BeliefBText, &t.Summary, &t.Classification, &t.CreatedAt, &t.ClassifiedAt,
	)
}

func (s *TensionStore) Insert(ctx context.Context, tensions []*domain.Tension) error {
	for _, t := range tensions {
		if t.Classification == "" {
			t.Classification = domain.TensionPending
		}
		err := s.db.QueryRow(ctx,
			`INSERT INTO tensions (user_id, belief_a_id, belief_b_id, belief_a_text, belief_b_text, summary, classification)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, created_at`,
			t.UserID, t.BeliefAID, t.BeliefBID, t.BeliefAText, t.BeliefBText, t.Summary, t.Classification,
		).Scan(&t.ID, &t.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert tension: %w", err)
		}
	}
	return nil
}

func (s *TensionStore) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Tension, error) {
	t := &domain.Tension{}
	row := s.db.QueryRow(ctx,
		`SELECT `+tensionColumns+` FROM tensions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err := scanTension(row, t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TensionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Tension, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+tensionColumns+` FROM tensions WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tensions: %w", err)
	}
	defer rows.Close()

	var results []domain.Tension
	for rows.Next() {
		var t domain.Tension
		if err := scanTension(rows, &t); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

func (s *TensionStore) SetClassification(ctx context.Context, id uuid.UUID, c domain.TensionClassification) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tensions SET classification = $2, classified_at = NOW() WHERE id = $1`,
		id, c,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

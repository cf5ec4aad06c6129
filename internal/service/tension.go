package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrInvalidClassification    = errors.New("invalid tension classification")
	ErrTensionAlreadyClassified = errors.New("tension already classified")
)

// TensionService tracks the user's classification of detected tensions. It is
// a labeled state machine: pending moves to exactly one of inconsistency,
// intentional_nuance, or explore. Re-classification is rejected — the data
// model would allow resubmission, but cards freeze after the first decision.
type TensionService struct {
	tensions domain.TensionStore
	logger   *zap.Logger
}

func NewTensionService(tensions domain.TensionStore, logger *zap.Logger) *TensionService {
	return &TensionService{tensions: tensions, logger: logger}
}

func (s *TensionService) List(ctx context.Context, userID uuid.UUID) ([]domain.Tension, error) {
	return s.tensions.ListByUser(ctx, userID)
}

func (s *TensionService) Classify(ctx context.Context, id uuid.UUID, userID uuid.UUID, target string) (*domain.Tension, error) {
	if !domain.ValidClassificationTarget(target) {
		return nil, ErrInvalidClassification
	}

	t, err := s.tensions.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if t.Classification != domain.TensionPending {
		return nil, ErrTensionAlreadyClassified
	}

	c := domain.TensionClassification(target)
	if err := s.tensions.SetClassification(ctx, id, c); err != nil {
		return nil, fmt.Errorf("set classification: %w", err)
	}

	now := time.Now()
	t.Classification = c
	t.ClassifiedAt = &now

	s.logger.Info("tension classified",
		zap.String("tension_id", id.String()),
		zap.String("classification", target))

	return t, nil
}

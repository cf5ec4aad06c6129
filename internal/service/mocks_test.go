package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/store"
)

// mockBeliefStore implements domain.BeliefStore for testing. Beliefs keep
// insertion order so genealogy runs are deterministic.
type mockBeliefStore struct {
	beliefs []*domain.Belief

	similarResponse []domain.BeliefWithScore
	lockHeld        bool
	updateParentErr error
}

func newMockBeliefStore() *mockBeliefStore {
	return &mockBeliefStore{}
}

func (m *mockBeliefStore) Insert(ctx context.Context, beliefs []*domain.Belief) error {
	for _, b := range beliefs {
		b.ID = uuid.New()
		m.beliefs = append(m.beliefs, b)
	}
	return nil
}

func (m *mockBeliefStore) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Belief, error) {
	for _, b := range m.beliefs {
		if b.ID == id && b.UserID == userID {
			return b, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockBeliefStore) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.BeliefFilter) ([]domain.Belief, error) {
	var results []domain.Belief
	for _, b := range m.beliefs {
		if b.UserID != userID {
			continue
		}
		if filter.Confirmed != nil && b.UserConfirmed != *filter.Confirmed {
			continue
		}
		if filter.Type != nil && b.Type != *filter.Type {
			continue
		}
		results = append(results, *b)
	}
	return results, nil
}

func (m *mockBeliefStore) ListConfirmed(ctx context.Context, userID uuid.UUID) ([]domain.Belief, error) {
	confirmed := true
	return m.ListByUser(ctx, userID, domain.BeliefFilter{Confirmed: &confirmed})
}

func (m *mockBeliefStore) Confirm(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	for _, b := range m.beliefs {
		if b.ID == id && b.UserID == userID {
			b.UserConfirmed = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mockBeliefStore) UpdateParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, beliefType domain.BeliefType) error {
	if m.updateParentErr != nil {
		return m.updateParentErr
	}
	for _, b := range m.beliefs {
		if b.ID == id {
			b.ParentID = parentID
			b.Type = beliefType
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *mockBeliefStore) FindSimilarConfirmed(ctx context.Context, userID uuid.UUID, embedding []float32, threshold float32) ([]domain.BeliefWithScore, error) {
	return m.similarResponse, nil
}

func (m *mockBeliefStore) AcquireRebuildLock(ctx context.Context, userID uuid.UUID) (func(), error) {
	if m.lockHeld {
		return nil, store.ErrLockHeld
	}
	return func() {}, nil
}

// mockTensionStore implements domain.TensionStore for testing.
type mockTensionStore struct {
	tensions []*domain.Tension
}

func newMockTensionStore() *mockTensionStore {
	return &mockTensionStore{}
}

func (m *mockTensionStore) Insert(ctx context.Context, tensions []*domain.Tension) error {
	for _, t := range tensions {
		t.ID = uuid.New()
		if t.Classification == "" {
			t.Classification = domain.TensionPending
		}
		m.tensions = append(m.tensions, t)
	}
	return nil
}

func (m *mockTensionStore) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Tension, error) {
	for _, t := range m.tensions {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockTensionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Tension, error) {
	var results []domain.Tension
	for _, t := range m.tensions {
		if t.UserID == userID {
			results = append(results, *t)
		}
	}
	return results, nil
}

func (m *mockTensionStore) SetClassification(ctx context.Context, id uuid.UUID, c domain.TensionClassification) error {
	for _, t := range m.tensions {
		if t.ID == id {
			t.Classification = c
			return nil
		}
	}
	return store.ErrNotFound
}

// mockTraceStore implements domain.TraceStore for testing.
type mockTraceStore struct {
	traces    []*domain.DecisionTrace
	insertErr error
}

func newMockTraceStore() *mockTraceStore {
	return &mockTraceStore{}
}

func (m *mockTraceStore) Insert(ctx context.Context, t *domain.DecisionTrace) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	t.ID = uuid.New()
	m.traces = append(m.traces, t)
	return nil
}

package domain

import (
	"context"

	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByAPIKeyHash(ctx context.Context, apiKeyHash string) (*User, error)
}

type BeliefStore interface {
	Insert(ctx context.Context, beliefs []*Belief) error
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Belief, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter BeliefFilter) ([]Belief, error)
	ListConfirmed(ctx context.Context, userID uuid.UUID) ([]Belief, error)
	Confirm(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	// UpdateParent writes one genealogy link (or clears it for roots) and the
	// role that comes with it. Each call is independently idempotent.
	UpdateParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID, beliefType BeliefType) error
	FindSimilarConfirmed(ctx context.Context, userID uuid.UUID, embedding []float32, threshold float32) ([]BeliefWithScore, error)
	// AcquireRebuildLock takes the per-user advisory lock guarding the
	// genealogy write phase. It returns ErrLockHeld when another rebuild for
	// the same user is in flight; otherwise the caller must invoke release.
	AcquireRebuildLock(ctx context.Context, userID uuid.UUID) (release func(), err error)
}

type TensionStore interface {
	Insert(ctx context.Context, tensions []*Tension) error
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Tension, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Tension, error)
	SetClassification(ctx context.Context, id uuid.UUID, c TensionClassification) error
}

type TraceStore interface {
	Insert(ctx context.Context, t *DecisionTrace) error
}

// LLMClient is the Language-Model Gateway boundary. Implementations must
// tolerate prose or code-fence wrapping around the JSON payload and map
// failures onto ErrGatewayUnavailable / ErrMalformedOutput.
type LLMClient interface {
	ExtractBeliefs(ctx context.Context, text string) (*ExtractionResult, error)
	ProposeGenealogy(ctx context.Context, beliefs []BeliefSummary) (*GenealogyProposal, error)
	ScoreAlignment(ctx context.Context, topic string, audience *Audience, beliefs []Belief) (*AlignmentResult, error)
	InferOutcome(ctx context.Context, topic string, audience *Audience) (OutcomeType, error)
	// ModelID identifies the underlying model for decision traces.
	ModelID() string
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

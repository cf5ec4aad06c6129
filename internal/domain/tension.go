package domain

import (
	"time"

	"github.com/google/uuid"
)

// TensionClassification is the user-assigned label for a detected tension.
// Every tension starts at pending and transitions exactly once.
type TensionClassification string

const (
	TensionPending           TensionClassification = "pending"
	TensionInconsistency     TensionClassification = "inconsistency"
	TensionIntentionalNuance TensionClassification = "intentional_nuance"
	TensionExplore           TensionClassification = "explore"
)

func ValidTensionClassification(c string) bool {
	switch TensionClassification(c) {
	case TensionPending, TensionInconsistency, TensionIntentionalNuance, TensionExplore:
		return true
	}
	return false
}

// ValidClassificationTarget reports whether c is a legal target of a user
// classification. Pending is the initial state only, never a target.
func ValidClassificationTarget(c string) bool {
	switch TensionClassification(c) {
	case TensionInconsistency, TensionIntentionalNuance, TensionExplore:
		return true
	}
	return false
}

// Tension is a detected conflict between two beliefs. Belief ids are resolved
// at extraction time from indices the model returns; an unresolvable index
// leaves the id nil and keeps the statement text.
type Tension struct {
	ID             uuid.UUID             `json:"id"`
	UserID         uuid.UUID             `json:"user_id"`
	BeliefAID      *uuid.UUID            `json:"belief_a_id,omitempty"`
	BeliefBID      *uuid.UUID            `json:"belief_b_id,omitempty"`
	BeliefAText    string                `json:"belief_a_text"`
	BeliefBText    string                `json:"belief_b_text"`
	Summary        string                `json:"summary"`
	Classification TensionClassification `json:"classification"`
	CreatedAt      time.Time             `json:"created_at"`
	ClassifiedAt   *time.Time            `json:"classified_at,omitempty"`
}

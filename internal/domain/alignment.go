package domain

import "github.com/google/uuid"

// AlignmentLevel is the qualitative bucket of a topic-alignment score.
// Distinct from ConfidenceLevel: alignment scores how well a candidate topic
// fits the confirmed belief set, not how well-evidenced a belief is.
type AlignmentLevel string

const (
	AlignmentLow    AlignmentLevel = "low"
	AlignmentMedium AlignmentLevel = "medium"
	AlignmentHigh   AlignmentLevel = "high"
)

func ValidAlignmentLevel(l string) bool {
	switch AlignmentLevel(l) {
	case AlignmentLow, AlignmentMedium, AlignmentHigh:
		return true
	}
	return false
}

// Audience describes who a piece of content is for.
type Audience struct {
	Role string `json:"role"`
	Pain string `json:"pain"`
}

// AlignmentResult is returned per scoring call and is not persisted as an
// entity. Score is 0–100.
type AlignmentResult struct {
	Level                AlignmentLevel `json:"level"`
	Score                int            `json:"score"`
	Reasoning            string         `json:"reasoning"`
	ConflictingBeliefIDs []uuid.UUID    `json:"conflicting_belief_ids,omitempty"`
}

type OutcomeType string

const (
	OutcomeAuthority  OutcomeType = "authority"
	OutcomeEngagement OutcomeType = "engagement"
	OutcomeConversion OutcomeType = "conversion"
	OutcomeConnection OutcomeType = "connection"
)

func ValidOutcomeType(o string) bool {
	switch OutcomeType(o) {
	case OutcomeAuthority, OutcomeEngagement, OutcomeConversion, OutcomeConnection:
		return true
	}
	return false
}

// OutcomeSource records which path produced an outcome inference.
type OutcomeSource string

const (
	OutcomeSourceHeuristic OutcomeSource = "heuristic"
	OutcomeSourceModel     OutcomeSource = "model"
	OutcomeSourceFallback  OutcomeSource = "fallback"
)

// OutcomeInference is the result of pre-filling a missing content goal.
type OutcomeInference struct {
	Outcome   OutcomeType   `json:"outcome"`
	Reasoning string        `json:"reasoning"`
	Source    OutcomeSource `json:"source"`
}

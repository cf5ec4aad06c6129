package domain

import (
	"time"

	"github.com/google/uuid"
)

type BeliefType string

const (
	// Extraction-time classifications.
	BeliefTypeCore     BeliefType = "core"
	BeliefTypeOverused BeliefType = "overused"
	BeliefTypeEmerging BeliefType = "emerging"
	// Genealogy roles. Once assigned they are never un-assigned.
	BeliefTypeRoot   BeliefType = "root"
	BeliefTypePillar BeliefType = "pillar"
)

func ValidBeliefType(t string) bool {
	switch BeliefType(t) {
	case BeliefTypeCore, BeliefTypeOverused, BeliefTypeEmerging, BeliefTypeRoot, BeliefTypePillar:
		return true
	}
	return false
}

// ConfidenceLevel is the extraction-time confidence bucket: how strongly the
// source text supports a belief's existence. Not to be confused with
// AlignmentLevel, which scores how well a topic fits a belief set.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// ConfidenceFromTag maps a caller-supplied qualitative confidence tag to an
// initial score. The mapping is a fixed table, not inferred.
func ConfidenceFromTag(tag string) float32 {
	switch tag {
	case "high":
		return 0.9
	case "low":
		return 0.3
	default:
		return 0.6
	}
}

// LevelForScore buckets an extraction confidence score into a level.
func LevelForScore(score float32) ConfidenceLevel {
	switch {
	case score >= 0.8:
		return ConfidenceHigh
	case score >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

type Belief struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Statement       string          `json:"statement"`
	Type            BeliefType      `json:"type"`
	EvidenceText    *string         `json:"evidence_text,omitempty"`
	ConfidenceScore float32         `json:"confidence_score"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	ParentID        *uuid.UUID      `json:"parent_id,omitempty"`
	UserConfirmed   bool            `json:"user_confirmed"`
	Embedding       []float32       `json:"-"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type BeliefWithScore struct {
	Belief
	Score float32 `json:"score"`
}

// BeliefFilter narrows ListByUser results.
type BeliefFilter struct {
	Confirmed *bool
	Type      *BeliefType
}

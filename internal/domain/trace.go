package domain

import (
	"time"

	"github.com/google/uuid"
)

// TraceAction identifies which engine operation a decision trace records.
type TraceAction string

const (
	TraceExtractBeliefs TraceAction = "extract_beliefs"
	TraceBuildGenealogy TraceAction = "build_genealogy"
	TraceScoreAlignment TraceAction = "score_alignment"
	TraceInferOutcome   TraceAction = "infer_outcome"
)

// DecisionTrace is an append-only audit record of one engine call. Writing
// traces is fire-and-forget: failures are logged and discarded, never
// surfaced to the caller.
type DecisionTrace struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Action      TraceAction    `json:"action"`
	Input       map[string]any `json:"input"`
	Output      map[string]any `json:"output"`
	ModelConfig map[string]any `json:"model_config"`
	LatencyMs   int64          `json:"latency_ms"`
	CreatedAt   time.Time      `json:"created_at"`
}

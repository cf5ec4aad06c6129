package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/domain"
	"go.uber.org/zap"
)

const (
	// documentSeparator joins multiple writing samples into one extraction
	// input.
	documentSeparator = "\n\n---\n\n"

	// duplicateSimilarityThreshold is the embedding cosine similarity above
	// which a freshly extracted statement is treated as a restatement of an
	// already-confirmed belief and skipped.
	duplicateSimilarityThreshold = 0.92
)

var ErrNoDocuments = errors.New("no documents to extract from")

// ExtractionService turns a batch of raw writing samples into unconfirmed
// beliefs and pending tensions. One gateway call per invocation, no retries:
// belief extraction is cost-sensitive, not latency-critical.
type ExtractionService struct {
	beliefs         domain.BeliefStore
	tensions        domain.TensionStore
	llmClient       domain.LLMClient
	embeddingClient domain.EmbeddingClient
	traces          *TraceRecorder
	logger          *zap.Logger
}

func NewExtractionService(
	beliefs domain.BeliefStore,
	tensions domain.TensionStore,
	llmClient domain.LLMClient,
	embeddingClient domain.EmbeddingClient,
	traces *TraceRecorder,
	logger *zap.Logger,
) *ExtractionService {
	return &ExtractionService{
		beliefs:         beliefs,
		tensions:        tensions,
		llmClient:       llmClient,
		embeddingClient: embeddingClient,
		traces:          traces,
		logger:          logger,
	}
}

// ExtractionOutput is what one extraction run persisted.
type ExtractionOutput struct {
	Beliefs  []*domain.Belief  `json:"beliefs"`
	Tensions []*domain.Tension `json:"tensions"`
	Skipped  int               `json:"skipped_duplicates"`
}

// Extract runs one extraction pass over the given documents for a user.
// confidenceTag is the caller-supplied qualitative confidence for this batch
// (high/low/anything else); it maps to initial scores via a fixed table.
// Gateway failures surface as ErrGatewayUnavailable or ErrMalformedOutput;
// substituting a canned result on failure is caller policy, not done here.
func (s *ExtractionService) Extract(ctx context.Context, userID uuid.UUID, documents []string, confidenceTag string) (*ExtractionOutput, error) {
	var docs []string
	for _, d := range documents {
		if strings.TrimSpace(d) != "" {
			docs = append(docs, d)
		}
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	text := strings.Join(docs, documentSeparator)

	// The gateway call is billed whether or not the caller sticks around, so
	// let it complete-and-discard instead of aborting on client cancel.
	gwCtx := context.WithoutCancel(ctx)

	start := time.Now()
	result, err := s.llmClient.ExtractBeliefs(gwCtx, text)
	latency := time.Since(start)

	if err != nil {
		s.traces.Record(gwCtx, userID, domain.TraceExtractBeliefs,
			map[string]any{"documents": len(docs), "chars": len(text)},
			map[string]any{"error": err.Error()},
			s.llmClient.ModelID(), latency)
		return nil, fmt.Errorf("extract beliefs: %w", err)
	}

	score := domain.ConfidenceFromTag(confidenceTag)
	level := domain.LevelForScore(score)

	statements := result.Statements()
	beliefs := make([]*domain.Belief, 0, len(statements))
	byIndex := make(map[int]*domain.Belief, len(statements))
	skipped := 0

	for i, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		var emb []float32
		if s.embeddingClient != nil {
			if vec, embErr := s.embeddingClient.Embed(gwCtx, stmt); embErr == nil {
				if dup := s.isDuplicate(ctx, userID, vec); dup {
					skipped++
					continue
				}
				emb = vec
			} else {
				// The duplicate screen is advisory; extraction proceeds
				// without it.
				s.logger.Debug("embedding failed, skipping duplicate screen", zap.Error(embErr))
			}
		}

		b := &domain.Belief{
			UserID:          userID,
			Statement:       stmt,
			Type:            result.TypeForIndex(i),
			ConfidenceScore: score,
			ConfidenceLevel: level,
			Embedding:       emb,
		}
		beliefs = append(beliefs, b)
		byIndex[i] = b
	}

	if err := s.beliefs.Insert(ctx, beliefs); err != nil {
		return nil, fmt.Errorf("persist beliefs: %w", err)
	}

	tensions := s.resolveTensions(userID, result, statements, byIndex)
	if err := s.tensions.Insert(ctx, tensions); err != nil {
		return nil, fmt.Errorf("persist tensions: %w", err)
	}

	s.traces.Record(gwCtx, userID, domain.TraceExtractBeliefs,
		map[string]any{"documents": len(docs), "chars": len(text), "confidence_tag": confidenceTag},
		map[string]any{"beliefs": len(beliefs), "tensions": len(tensions), "skipped_duplicates": skipped},
		s.llmClient.ModelID(), latency)

	s.logger.Info("extraction complete",
		zap.String("user_id", userID.String()),
		zap.Int("beliefs", len(beliefs)),
		zap.Int("tensions", len(tensions)),
		zap.Int("skipped_duplicates", skipped))

	return &ExtractionOutput{Beliefs: beliefs, Tensions: tensions, Skipped: skipped}, nil
}

func (s *ExtractionService) isDuplicate(ctx context.Context, userID uuid.UUID, embedding []float32) bool {
	similar, err := s.beliefs.FindSimilarConfirmed(ctx, userID, embedding, duplicateSimilarityThreshold)
	if err != nil {
		s.logger.Debug("similarity lookup failed, skipping duplicate screen", zap.Error(err))
		return false
	}
	return len(similar) > 0
}

// resolveTensions maps model-returned indices onto the freshly inserted
// beliefs. An out-of-range or duplicate-skipped index leaves the id nil; the
// statement text is kept either way.
func (s *ExtractionService) resolveTensions(userID uuid.UUID, result *domain.ExtractionResult, statements []string, byIndex map[int]*domain.Belief) []*domain.Tension {
	tensions := make([]*domain.Tension, 0, len(result.Tensions))
	for _, et := range result.Tensions {
		t := &domain.Tension{
			UserID:         userID,
			BeliefAText:    et.BeliefAText,
			BeliefBText:    et.BeliefBText,
			Summary:        et.Summary,
			Classification: domain.TensionPending,
		}
		if b, ok := byIndex[et.BeliefAIndex]; ok {
			t.BeliefAID = &b.ID
			if t.BeliefAText == "" {
				t.BeliefAText = b.Statement
			}
		} else if et.BeliefAIndex >= 0 && et.BeliefAIndex < len(statements) && t.BeliefAText == "" {
			t.BeliefAText = statements[et.BeliefAIndex]
		}
		if b, ok := byIndex[et.BeliefBIndex]; ok {
			t.BeliefBID = &b.ID
			if t.BeliefBText == "" {
				t.BeliefBText = b.Statement
			}
		} else if et.BeliefBIndex >= 0 && et.BeliefBIndex < len(statements) && t.BeliefBText == "" {
			t.BeliefBText = statements[et.BeliefBIndex]
		}
		tensions = append(tensions, t)
	}
	return tensions
}

// FallbackExtraction is the canned result callers may substitute when the
// gateway fails and the product needs something to show. Applying it is
// caller policy; the engine itself always reports the failure.
func FallbackExtraction() *domain.ExtractionResult {
	return &domain.ExtractionResult{
		CoreBeliefs: []string{
			"Showing up consistently matters more than occasional brilliance",
			"Specific stories persuade better than general advice",
			"An audience is earned by giving away your best thinking",
		},
		OverusedAngles: []string{
			"Hustle-culture framing of productivity",
		},
		EmergingThesis: "",
		Tensions:       []domain.ExtractedTension{},
	}
}

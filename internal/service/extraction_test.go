package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/domain"
	"github.com/voicestack/beliefgraph/internal/embedding"
	"github.com/voicestack/beliefgraph/internal/llm"
	"go.uber.org/zap"
)

func setupExtractionTest() (*ExtractionService, *mockBeliefStore, *mockTensionStore, *mockTraceStore, *llm.MockClient, uuid.UUID) {
	beliefStore := newMockBeliefStore()
	tensionStore := newMockTensionStore()
	traceStore := newMockTraceStore()
	llmClient := llm.NewMockClient()
	logger := zap.NewNop()

	svc := NewExtractionService(beliefStore, tensionStore, llmClient, nil, NewTraceRecorder(traceStore, logger), logger)
	return svc, beliefStore, tensionStore, traceStore, llmClient, uuid.New()
}

func TestExtractionService_Extract(t *testing.T) {
	svc, beliefStore, tensionStore, traceStore, llmClient, userID := setupExtractionTest()

	llmClient.ExtractBeliefsResponse = &domain.ExtractionResult{
		CoreBeliefs:    []string{"Ship small and often", "Feedback beats planning"},
		OverusedAngles: []string{"Everything is a system"},
		EmergingThesis: "Constraints are a gift",
		Tensions: []domain.ExtractedTension{
			{BeliefAIndex: 0, BeliefBIndex: 3, Summary: "shipping fast vs. embracing constraints"},
		},
	}

	out, err := svc.Extract(context.Background(), userID, []string{"post one", "post two"}, "high")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(out.Beliefs) != 4 {
		t.Fatalf("expected 4 beliefs, got %d", len(out.Beliefs))
	}
	if len(beliefStore.beliefs) != 4 {
		t.Fatalf("expected 4 beliefs in store, got %d", len(beliefStore.beliefs))
	}

	wantTypes := []domain.BeliefType{
		domain.BeliefTypeCore, domain.BeliefTypeCore,
		domain.BeliefTypeOverused, domain.BeliefTypeEmerging,
	}
	for i, b := range out.Beliefs {
		if b.Type != wantTypes[i] {
			t.Errorf("belief %d: expected type %s, got %s", i, wantTypes[i], b.Type)
		}
		if b.ConfidenceScore != 0.9 {
			t.Errorf("belief %d: expected confidence 0.9 for high tag, got %v", i, b.ConfidenceScore)
		}
		if b.ConfidenceLevel != domain.ConfidenceHigh {
			t.Errorf("belief %d: expected high level, got %s", i, b.ConfidenceLevel)
		}
		if b.UserConfirmed {
			t.Errorf("belief %d: must be created unconfirmed", i)
		}
	}

	if len(out.Tensions) != 1 {
		t.Fatalf("expected 1 tension, got %d", len(out.Tensions))
	}
	tension := out.Tensions[0]
	if tension.Classification != domain.TensionPending {
		t.Errorf("expected pending classification, got %s", tension.Classification)
	}
	if tension.BeliefAID == nil || *tension.BeliefAID != out.Beliefs[0].ID {
		t.Error("tension belief A id not resolved to first extracted belief")
	}
	if tension.BeliefBID == nil || *tension.BeliefBID != out.Beliefs[3].ID {
		t.Error("tension belief B id not resolved to emerging thesis belief")
	}
	if tension.BeliefAText != "Ship small and often" {
		t.Errorf("tension belief A text not backfilled, got %q", tension.BeliefAText)
	}
	if len(tensionStore.tensions) != 1 {
		t.Fatalf("expected 1 tension in store, got %d", len(tensionStore.tensions))
	}

	if len(traceStore.traces) != 1 {
		t.Fatalf("expected 1 decision trace, got %d", len(traceStore.traces))
	}
	if traceStore.traces[0].Action != domain.TraceExtractBeliefs {
		t.Errorf("unexpected trace action %s", traceStore.traces[0].Action)
	}
}

func TestExtractionService_Extract_ConfidenceTagTable(t *testing.T) {
	cases := []struct {
		tag       string
		wantScore float32
		wantLevel domain.ConfidenceLevel
	}{
		{"high", 0.9, domain.ConfidenceHigh},
		{"low", 0.3, domain.ConfidenceLow},
		{"", 0.6, domain.ConfidenceMedium},
		{"whatever", 0.6, domain.ConfidenceMedium},
	}

	for _, tc := range cases {
		svc, beliefStore, _, _, llmClient, userID := setupExtractionTest()
		llmClient.ExtractBeliefsResponse = &domain.ExtractionResult{
			CoreBeliefs: []string{"One belief"},
		}

		if _, err := svc.Extract(context.Background(), userID, []string{"doc"}, tc.tag); err != nil {
			t.Fatalf("tag %q: unexpected error %v", tc.tag, err)
		}
		b := beliefStore.beliefs[0]
		if b.ConfidenceScore != tc.wantScore {
			t.Errorf("tag %q: expected score %v, got %v", tc.tag, tc.wantScore, b.ConfidenceScore)
		}
		if b.ConfidenceLevel != tc.wantLevel {
			t.Errorf("tag %q: expected level %s, got %s", tc.tag, tc.wantLevel, b.ConfidenceLevel)
		}
	}
}

func TestExtractionService_Extract_NoDocuments(t *testing.T) {
	svc, _, _, _, _, userID := setupExtractionTest()

	if _, err := svc.Extract(context.Background(), userID, nil, "high"); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments, got %v", err)
	}
	if _, err := svc.Extract(context.Background(), userID, []string{"   ", ""}, "high"); !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("expected ErrNoDocuments for blank docs, got %v", err)
	}
}

func TestExtractionService_Extract_MalformedOutput(t *testing.T) {
	svc, beliefStore, _, _, llmClient, userID := setupExtractionTest()
	llmClient.ExtractBeliefsError = domain.ErrMalformedOutput

	_, err := svc.Extract(context.Background(), userID, []string{"doc"}, "high")
	if !errors.Is(err, domain.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
	if len(beliefStore.beliefs) != 0 {
		t.Fatal("no beliefs must be written on failure")
	}

	// Caller-level fallback must be non-empty and well-typed.
	fallback := FallbackExtraction()
	fallback.Normalize()
	if fallback.Empty() {
		t.Fatal("fallback extraction must be non-empty")
	}
	for i := range fallback.Statements() {
		if !domain.ValidBeliefType(string(fallback.TypeForIndex(i))) {
			t.Fatalf("fallback statement %d has invalid type", i)
		}
	}
}

func TestExtractionService_Extract_GatewayUnavailable(t *testing.T) {
	svc, _, _, traceStore, llmClient, userID := setupExtractionTest()
	llmClient.ExtractBeliefsError = domain.ErrGatewayUnavailable

	_, err := svc.Extract(context.Background(), userID, []string{"doc"}, "high")
	if !errors.Is(err, domain.ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	// Failures are traced too.
	if len(traceStore.traces) != 1 {
		t.Fatalf("expected 1 trace for failed call, got %d", len(traceStore.traces))
	}
}

func TestExtractionService_Extract_UnresolvableTensionIndex(t *testing.T) {
	svc, _, _, _, llmClient, userID := setupExtractionTest()
	llmClient.ExtractBeliefsResponse = &domain.ExtractionResult{
		CoreBeliefs: []string{"Only belief"},
		Tensions: []domain.ExtractedTension{
			{BeliefAIndex: 0, BeliefBIndex: 42, BeliefBText: "phantom belief", Summary: "conflict"},
		},
	}

	out, err := svc.Extract(context.Background(), userID, []string{"doc"}, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tension := out.Tensions[0]
	if tension.BeliefAID == nil {
		t.Error("in-range index must resolve")
	}
	if tension.BeliefBID != nil {
		t.Error("out-of-range index must leave id nil")
	}
	if tension.BeliefBText != "phantom belief" {
		t.Errorf("text must survive unresolved index, got %q", tension.BeliefBText)
	}
}

func TestExtractionService_Extract_DuplicateScreen(t *testing.T) {
	beliefStore := newMockBeliefStore()
	tensionStore := newMockTensionStore()
	traceStore := newMockTraceStore()
	llmClient := llm.NewMockClient()
	logger := zap.NewNop()
	embedder := embedding.NewMockClient()

	svc := NewExtractionService(beliefStore, tensionStore, llmClient, embedder, NewTraceRecorder(traceStore, logger), logger)

	// Every statement looks like an existing confirmed belief.
	beliefStore.similarResponse = []domain.BeliefWithScore{
		{Belief: domain.Belief{Statement: "already confirmed"}, Score: 0.95},
	}
	llmClient.ExtractBeliefsResponse = &domain.ExtractionResult{
		CoreBeliefs: []string{"Restated belief", "Another restatement"},
	}

	out, err := svc.Extract(context.Background(), uuid.New(), []string{"doc"}, "high")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out.Beliefs) != 0 {
		t.Fatalf("expected all statements skipped as duplicates, got %d", len(out.Beliefs))
	}
	if out.Skipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", out.Skipped)
	}
	if len(embedder.EmbedCalls) != 2 {
		t.Fatalf("expected 2 embed calls, got %d", len(embedder.EmbedCalls))
	}
}

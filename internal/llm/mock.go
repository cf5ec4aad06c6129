package llm

import (
	"context"

	"github.com/voicestack/beliefgraph/internal/domain"
)

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	ExtractBeliefsResponse   *domain.ExtractionResult
	ExtractBeliefsError      error
	ProposeGenealogyResponse *domain.GenealogyProposal
	ProposeGenealogyError    error
	ScoreAlignmentResponse   *domain.AlignmentResult
	ScoreAlignmentError      error
	InferOutcomeResponse     domain.OutcomeType
	InferOutcomeError        error

	// Call tracking for assertions
	ExtractBeliefsCalls   []string
	ProposeGenealogyCalls [][]domain.BeliefSummary
	ScoreAlignmentCalls   []string
	InferOutcomeCalls     []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		ExtractBeliefsResponse: &domain.ExtractionResult{
			CoreBeliefs:    []string{"Consistency beats intensity"},
			OverusedAngles: []string{},
			Tensions:       []domain.ExtractedTension{},
		},
		ProposeGenealogyResponse: &domain.GenealogyProposal{
			RootIndexes: []int{0},
		},
		ScoreAlignmentResponse: &domain.AlignmentResult{
			Level:     domain.AlignmentMedium,
			Score:     50,
			Reasoning: "Mock alignment",
		},
		InferOutcomeResponse: domain.OutcomeAuthority,
	}
}

func (c *MockClient) ModelID() string {
	return "mock"
}

func (c *MockClient) ExtractBeliefs(ctx context.Context, text string) (*domain.ExtractionResult, error) {
	c.ExtractBeliefsCalls = append(c.ExtractBeliefsCalls, text)
	if c.ExtractBeliefsError != nil {
		return nil, c.ExtractBeliefsError
	}
	return c.ExtractBeliefsResponse, nil
}

func (c *MockClient) ProposeGenealogy(ctx context.Context, beliefs []domain.BeliefSummary) (*domain.GenealogyProposal, error) {
	c.ProposeGenealogyCalls = append(c.ProposeGenealogyCalls, beliefs)
	if c.ProposeGenealogyError != nil {
		return nil, c.ProposeGenealogyError
	}
	return c.ProposeGenealogyResponse, nil
}

func (c *MockClient) ScoreAlignment(ctx context.Context, topic string, audience *domain.Audience, beliefs []domain.Belief) (*domain.AlignmentResult, error) {
	c.ScoreAlignmentCalls = append(c.ScoreAlignmentCalls, topic)
	if c.ScoreAlignmentError != nil {
		return nil, c.ScoreAlignmentError
	}
	return c.ScoreAlignmentResponse, nil
}

func (c *MockClient) InferOutcome(ctx context.Context, topic string, audience *domain.Audience) (domain.OutcomeType, error) {
	c.InferOutcomeCalls = append(c.InferOutcomeCalls, topic)
	if c.InferOutcomeError != nil {
		return "", c.InferOutcomeError
	}
	return c.InferOutcomeResponse, nil
}

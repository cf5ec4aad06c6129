package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/voicestack/beliefgraph/internal/domain"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	chatModel     = "gpt-4o-mini"
)

type OpenAIClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// chat types for OpenAI API
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) complete(ctx context.Context, messages []chatMessage, temp float32) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       chatModel,
		Messages:    messages,
		Temperature: temp,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openAIChatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal chat response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("chat API error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func (c *OpenAIClient) ModelID() string {
	return "openai/" + chatModel
}

func (c *OpenAIClient) ExtractBeliefs(ctx context.Context, text string) (*domain.ExtractionResult, error) {
	messages := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(extractBeliefsPrompt, text)},
	}

	raw, err := c.complete(ctx, messages, 0.2)
	if err != nil {
		return nil, gatewayErr("extract beliefs", err)
	}

	var result domain.ExtractionResult
	if err := parsePayload(raw, &result); err != nil {
		return nil, fmt.Errorf("extract beliefs: %w", err)
	}
	result.Normalize()
	if result.Empty() {
		return nil, malformedErr("extract beliefs", "no beliefs in response")
	}

	return &result, nil
}

func (c *OpenAIClient) ProposeGenealogy(ctx context.Context, beliefs []domain.BeliefSummary) (*domain.GenealogyProposal, error) {
	var sb strings.Builder
	for _, b := range beliefs {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", b.Index, b.Type, b.Statement))
	}

	messages := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(genealogyPrompt, sb.String())},
	}

	raw, err := c.complete(ctx, messages, 0.2)
	if err != nil {
		return nil, gatewayErr("propose genealogy", err)
	}

	var proposal domain.GenealogyProposal
	if err := parsePayload(raw, &proposal); err != nil {
		return nil, fmt.Errorf("propose genealogy: %w", err)
	}

	return &proposal, nil
}

// alignmentWire matches the raw gateway shape; belief ids arrive as strings
// and are converted after parsing.
type alignmentWire struct {
	Level                string   `json:"level"`
	Score                int      `json:"score"`
	Reasoning            string   `json:"reasoning"`
	ConflictingBeliefIDs []string `json:"conflicting_belief_ids"`
}

func (w *alignmentWire) toDomain() *domain.AlignmentResult {
	result := &domain.AlignmentResult{
		Level:     domain.AlignmentLevel(w.Level),
		Score:     w.Score,
		Reasoning: w.Reasoning,
	}
	for _, raw := range w.ConflictingBeliefIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		result.ConflictingBeliefIDs = append(result.ConflictingBeliefIDs, id)
	}
	return result
}

func (c *OpenAIClient) ScoreAlignment(ctx context.Context, topic string, audience *domain.Audience, beliefs []domain.Belief) (*domain.AlignmentResult, error) {
	var sb strings.Builder
	for _, b := range beliefs {
		sb.WriteString(fmt.Sprintf("%s: %s\n", b.ID, b.Statement))
	}

	messages := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(alignmentPrompt, topic, audienceLine(audience), sb.String())},
	}

	raw, err := c.complete(ctx, messages, 0.2)
	if err != nil {
		return nil, gatewayErr("score alignment", err)
	}

	var wire alignmentWire
	if err := parsePayload(raw, &wire); err != nil {
		return nil, fmt.Errorf("score alignment: %w", err)
	}

	return wire.toDomain(), nil
}

func (c *OpenAIClient) InferOutcome(ctx context.Context, topic string, audience *domain.Audience) (domain.OutcomeType, error) {
	messages := []chatMessage{
		{Role: "user", Content: fmt.Sprintf(outcomePrompt, topic, audienceLine(audience))},
	}

	raw, err := c.complete(ctx, messages, 0)
	if err != nil {
		return "", gatewayErr("infer outcome", err)
	}

	var wire struct {
		Outcome string `json:"outcome"`
	}
	if err := parsePayload(raw, &wire); err != nil {
		return "", fmt.Errorf("infer outcome: %w", err)
	}
	if !domain.ValidOutcomeType(wire.Outcome) {
		return "", malformedErr("infer outcome", "unknown outcome "+wire.Outcome)
	}

	return domain.OutcomeType(wire.Outcome), nil
}

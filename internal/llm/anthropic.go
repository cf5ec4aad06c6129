package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/voicestack/beliefgraph/internal/domain"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicModel       = "claude-3-5-haiku-20241022"
	anthropicVersion     = "2023-06-01"
)

type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:     anthropicModel,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal anthropic request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create anthropic request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read anthropic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal anthropic response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("anthropic API error: %s", result.Error.Message)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic API returned no content")
	}

	return strings.TrimSpace(result.Content[0].Text), nil
}

func (c *AnthropicClient) ModelID() string {
	return "anthropic/" + anthropicModel
}

func (c *AnthropicClient) ExtractBeliefs(ctx context.Context, text string) (*domain.ExtractionResult, error) {
	raw, err := c.complete(ctx, fmt.Sprintf(extractBeliefsPrompt, text), 2048)
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

func (c *AnthropicClient) ProposeGenealogy(ctx context.Context, beliefs []domain.BeliefSummary) (*domain.GenealogyProposal, error) {
	var sb strings.Builder
	for _, b := range beliefs {
		sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", b.Index, b.Type, b.Statement))
	}

	raw, err := c.complete(ctx, fmt.Sprintf(genealogyPrompt, sb.String()), 1024)
	if err != nil {
		return nil, gatewayErr("propose genealogy", err)
	}

	var proposal domain.GenealogyProposal
	if err := parsePayload(raw, &proposal); err != nil {
		return nil, fmt.Errorf("propose genealogy: %w", err)
	}

	return &proposal, nil
}

func (c *AnthropicClient) ScoreAlignment(ctx context.Context, topic string, audience *domain.Audience, beliefs []domain.Belief) (*domain.AlignmentResult, error) {
	var sb strings.Builder
	for _, b := range beliefs {
		sb.WriteString(fmt.Sprintf("%s: %s\n", b.ID, b.Statement))
	}

	raw, err := c.complete(ctx, fmt.Sprintf(alignmentPrompt, topic, audienceLine(audience), sb.String()), 1024)
	if err != nil {
		return nil, gatewayErr("score alignment", err)
	}

	var wire alignmentWire
	if err := parsePayload(raw, &wire); err != nil {
		return nil, fmt.Errorf("score alignment: %w", err)
	}

	return wire.toDomain(), nil
}

func (c *AnthropicClient) InferOutcome(ctx context.Context, topic string, audience *domain.Audience) (domain.OutcomeType, error) {
	raw, err := c.complete(ctx, fmt.Sprintf(outcomePrompt, topic, audienceLine(audience)), 256)
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

package embedding

import "context"

// MockClient returns a fixed zero vector. Useful for tests and local runs
// where the duplicate screen should be a no-op.
type MockClient struct {
	Dim       int
	EmbedErr  error
	EmbedCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{Dim: 1536}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	c.EmbedCalls = append(c.EmbedCalls, text)
	if c.EmbedErr != nil {
		return nil, c.EmbedErr
	}
	return make([]float32, c.Dim), nil
}

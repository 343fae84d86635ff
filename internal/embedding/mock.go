package embedding

import (
	"context"
	"hash/fnv"
)

const mockDimensions = 1536

// MockClient produces deterministic pseudo-embeddings from a text hash, so
// tests and keyless deployments get stable vectors without network calls.
type MockClient struct {
	EmbedError error
	EmbedCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	c.EmbedCalls = append(c.EmbedCalls, text)
	if c.EmbedError != nil {
		return nil, c.EmbedError
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	out := make([]float32, mockDimensions)
	for i := range out {
		seed = seed*6364136223846793005 + 1442695040888963407
		out[i] = float32(int64(seed>>33))/float32(1<<31) * 0.5
	}
	return out, nil
}

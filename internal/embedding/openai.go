package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

const (
	defaultEmbeddingURL = "https://api.openai.com/v1/embeddings"
	embeddingModel      = "text-embedding-3-small"

	// embeddingRPS paces outbound embedding calls; a burst of fact appends
	// must not exhaust the provider quota.
	embeddingRPS   = 5
	embeddingBurst = 10

	// maxEmbedInput caps the statement length sent to the provider. Fact
	// statements are short; anything longer is truncated, not rejected.
	maxEmbedInput = 8192
)

type OpenAIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    defaultEmbeddingURL,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(embeddingRPS), embeddingBurst),
	}
}

// SetBaseURL overrides the provider endpoint. Used by tests and
// OpenAI-compatible gateways.
func (c *OpenAIClient) SetBaseURL(url string) {
	c.baseURL = url
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if len(text) > maxEmbedInput {
		text = text[:maxEmbedInput]
	}

	body, err := json.Marshal(embeddingRequest{
		Model: embeddingModel,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result embeddingResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal embedding response: %w", err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", result.Error.Message)
	}

	if len(result.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}

	return result.Data[0].Embedding, nil
}

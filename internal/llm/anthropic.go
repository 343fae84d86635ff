package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicModel       = "claude-3-5-haiku-20241022"
	anthropicVersion     = "2023-06-01"
	anthropicMaxTokens   = 512
)

type AnthropicClient struct {
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(completionRPS), completionBurst),
	}
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) complete(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     anthropicModel,
		MaxTokens: anthropicMaxTokens,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal messages request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create messages request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("messages request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read messages response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("messages API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal messages response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("messages API error: %s", result.Error.Message)
	}

	if len(result.Content) == 0 {
		return "", fmt.Errorf("messages API returned no content")
	}

	return strings.TrimSpace(result.Content[0].Text), nil
}

func (c *AnthropicClient) GenerateProof(ctx context.Context, precondition, command, postcondition string) (string, error) {
	return c.complete(ctx, proofPrompt(precondition, command, postcondition))
}

func (c *AnthropicClient) ExplainPattern(ctx context.Context, pattern, description, code string) (string, error) {
	return c.complete(ctx, explainPrompt(pattern, description, code))
}

package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds client configuration for an OpenAI-compatible endpoint.
type Config struct {
	BaseURL     string        // e.g. https://openrouter.ai/api/v1
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration // per-call deadline. Default: 120s.
}

func (c *Config) defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.Model == "" {
		c.Model = "anthropic/claude-3.5-sonnet"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.6
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
}

// Client talks to an OpenAI-compatible chat completions API.
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	cfg.defaults()
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

const systemPrompt = "You output ONLY valid JSON. No markdown. No extra text."

// CompleteJSON sends the prompt and decodes the first choice's message
// content as a JSON object.
func (c *Client) CompleteJSON(ctx context.Context, prompt string) (map[string]any, error) {
	reqBody := map[string]any{
		"model": c.config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": c.config.Temperature,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidOutput)
	}
	return DecodeJSON(result.Choices[0].Message.Content)
}

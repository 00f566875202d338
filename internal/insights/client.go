package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/journallm/journallm/internal/config"
)

// ErrNoAPIKey indicates the client was constructed without an API key.
var ErrNoAPIKey = errors.New("anthropic api key is required")

const anthropicVersion = "2023-06-01"

// Message is one turn in a Messages API conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesRequest is the request body for POST /v1/messages.
type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

// countRequest is the request body for POST /v1/messages/count_tokens.
type countRequest struct {
	Model    string    `json:"model"`
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
}

// messagesResponse is the response body for POST /v1/messages.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// countResponse is the response body for the counting endpoint.
type countResponse struct {
	InputTokens int `json:"input_tokens"`
}

// apiError is the error envelope the API returns on non-2xx status.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client is an Anthropic Messages API client.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewClient creates a client from configuration. The API key is
// required; other fields fall back to the config defaults.
func NewClient(cfg config.AnthropicConfig) (*Client, error) {
	if !cfg.APIKey.IsSet() {
		return nil, ErrNoAPIKey
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4000
	}
	return &Client{
		apiKey:    cfg.APIKey.Value(),
		baseURL:   baseURL,
		model:     cfg.Model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// Complete sends a conversation to the model and returns the text of
// the first content block.
func (c *Client) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	req := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  messages,
	}

	var resp messagesResponse
	if err := c.post(ctx, "/v1/messages", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Content[0].Text, nil
}

// Measure reports the input-token count of text as the model provider
// measures it. Implements the budget measurer contract.
func (c *Client) Measure(ctx context.Context, text string) (int, error) {
	req := countRequest{
		Model:    c.model,
		Messages: []Message{{Role: "user", Content: text}},
	}

	var resp countResponse
	if err := c.post(ctx, "/v1/messages/count_tokens", req, &resp); err != nil {
		return 0, err
	}
	return resp.InputTokens, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)
	httpReq.Header.Set("Anthropic-Version", anthropicVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("api request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var envelope apiError
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Message != "" {
			return fmt.Errorf("api error (%d): %s", httpResp.StatusCode, envelope.Error.Message)
		}
		return fmt.Errorf("api error (%d): %s", httpResp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

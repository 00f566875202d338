package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journallm/journallm/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.AnthropicConfig{
		APIKey:    "sk-test",
		BaseURL:   server.URL,
		Model:     "claude-test",
		MaxTokens: 1000,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(config.AnthropicConfig{})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestClient_Complete(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("X-API-Key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("Anthropic-Version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		assert.Equal(t, 1000, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "assistant", req.Messages[1].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "\n\nSome advice."}},
		})
	})

	text, err := client.Complete(context.Background(), "system", []Message{
		{Role: "user", Content: "journal"},
		{Role: "assistant", Content: "# Heading"},
	})
	require.NoError(t, err)
	assert.Equal(t, "\n\nSome advice.", text)
}

func TestClient_CompleteEmptyResponse(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []map[string]string{}})
	})

	_, err := client.Complete(context.Background(), "", []Message{{Role: "user", Content: "x"}})
	assert.ErrorContains(t, err, "empty response")
}

func TestClient_APIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "rate_limit_error", "message": "slow down"},
		})
	})

	_, err := client.Complete(context.Background(), "", []Message{{Role: "user", Content: "x"}})
	assert.ErrorContains(t, err, "api error (429): slow down")
}

func TestClient_Measure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages/count_tokens", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]int{"input_tokens": 4321})
	})

	n, err := client.Measure(context.Background(), "some canonical document")
	require.NoError(t, err)
	assert.Equal(t, 4321, n)
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"query-genie/internal/constants"
)

func newCompletionServer(t *testing.T, status int, content string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var captured map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "llama-3.1-8b-instant",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestOpenAIClientComplete(t *testing.T) {
	srv, captured := newCompletionServer(t, http.StatusOK, "SELECT 1")

	client, err := NewOpenAIClient(Config{
		Provider: constants.Groq,
		APIKey:   "test-key",
		BaseURL:  srv.URL + "/v1/",
	}, zap.NewNop())
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", out)

	assert.Equal(t, constants.GroqModel, (*captured)["model"])
	temperature, ok := (*captured)["temperature"].(float64)
	require.True(t, ok, "temperature must be sent explicitly")
	assert.Less(t, temperature, 1e-6)

	info := client.GetModelInfo()
	assert.Equal(t, constants.Groq, info.Provider)
	assert.Equal(t, constants.GroqModel, info.Name)
}

func TestOpenAIClientError(t *testing.T) {
	srv, _ := newCompletionServer(t, http.StatusUnauthorized, "")

	client, err := NewOpenAIClient(Config{Provider: constants.OpenAI, APIKey: "test-key", BaseURL: srv.URL + "/v1"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai API error")
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(Config{Provider: constants.Groq}, zap.NewNop())
	assert.Error(t, err)
}

func TestManager(t *testing.T) {
	m := NewManager(zap.NewNop())

	require.NoError(t, m.RegisterClient(constants.Groq, Config{Provider: constants.Groq, APIKey: "k"}))
	client, err := m.GetClient(constants.Groq)
	require.NoError(t, err)
	assert.Equal(t, constants.GroqModel, client.GetModelInfo().Name)

	assert.Error(t, m.RegisterClient("x", Config{Provider: "nope"}))

	m.SetClient("custom", client)
	_, err = m.GetClient("custom")
	assert.NoError(t, err)

	m.RemoveClient("custom")
	_, err = m.GetClient("custom")
	assert.Error(t, err)
}

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/opsflow/internal/config"
	"github.com/Rrens/opsflow/internal/llm"
)

func TestProvider_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"[]"}}],"usage":{"total_tokens":12}}`))
	}))
	defer srv.Close()

	p := NewProvider("deepseek", config.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"}, time.Second, "deepseek-chat")
	assert.Equal(t, "deepseek", p.Name())
	assert.Equal(t, "deepseek-chat", p.DefaultModel())

	resp, err := p.Generate(context.Background(), llm.Request{Prompt: "hi", System: "sys", Temperature: 0.2}, "")
	require.NoError(t, err)

	assert.Equal(t, "[]", resp.Text)
	assert.Equal(t, 12, resp.TokensUsed)
	assert.Equal(t, "deepseek-chat", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[1].Content)
}

func TestProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewProvider("openai", config.OpenAIConfig{APIKey: "k", BaseURL: srv.URL}, time.Second)
	_, err := p.Generate(context.Background(), llm.Request{Prompt: "hi"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

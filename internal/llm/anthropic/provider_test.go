package anthropic

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
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"[{\"title\":"},{"type":"text","text":"\"x\"}]"}],"usage":{"input_tokens":7,"output_tokens":5}}`))
	}))
	defer srv.Close()

	p := NewProvider(config.AnthropicConfig{APIKey: "sk-ant-test", BaseURL: srv.URL + "/"}, time.Second)
	assert.Equal(t, "anthropic", p.Name())
	assert.True(t, p.IsConfigured())

	resp, err := p.Generate(context.Background(), llm.Request{Prompt: "hi", System: "sys", Temperature: 0.3}, "")
	require.NoError(t, err)

	assert.Equal(t, `[{"title":"x"}]`, resp.Text)
	assert.Equal(t, 12, resp.TokensUsed)
	assert.Equal(t, "claude-3-5-haiku-latest", resp.Model)
	assert.Equal(t, "sys", got.System)
	assert.Equal(t, llm.DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "hi", got.Messages[0].Content)
}

func TestProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type":"error"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewProvider(config.AnthropicConfig{APIKey: "bad", BaseURL: srv.URL}, time.Second)
	_, err := p.Generate(context.Background(), llm.Request{Prompt: "hi"}, "claude-3-opus-latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestProvider_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[],"usage":{}}`))
	}))
	defer srv.Close()

	p := NewProvider(config.AnthropicConfig{APIKey: "k", BaseURL: srv.URL}, time.Second)
	_, err := p.Generate(context.Background(), llm.Request{Prompt: "hi"}, "")
	assert.Error(t, err)
}

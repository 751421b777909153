package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
)

func TestOpenAICompleter(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"You may be entitled to a refund."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o-mini"}, observability.Discard())
	reply, err := c.Complete(context.Background(), CompletionRequest{
		SystemInstruction: "You are a legal assistant.",
		SessionID:         "s1",
		UserText:          "Can I get a refund?",
	})
	require.NoError(t, err)
	assert.Equal(t, "You may be entitled to a refund.", reply)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, "s1", got.User)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "Can I get a refund?", got.Messages[1].Content)
}

func TestOpenAICompleterUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"}, observability.Discard())
	_, err := c.Complete(context.Background(), CompletionRequest{UserText: "hi"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindGateway))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestOpenAICompleterNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"}, observability.Discard())
	_, err := c.Complete(context.Background(), CompletionRequest{UserText: "hi"})
	require.ErrorIs(t, err, ErrEmptyCompletion)
}

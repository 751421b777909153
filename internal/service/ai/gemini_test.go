package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
)

func newGeminiTestServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-2.5-pro:generateContent"), r.URL.Path)
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeminiCompleter(t *testing.T) {
	var seen map[string]any
	srv := newGeminiTestServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Consumers have a right to a refund."}]}}]}`, &seen)

	c, err := NewGeminiCompleter(context.Background(), GeminiConfig{
		APIKey: "test", Model: "gemini-2.5-pro", BaseURL: srv.URL + "/",
	}, observability.Discard())
	require.NoError(t, err)

	reply, err := c.Complete(context.Background(), CompletionRequest{
		SystemInstruction: "You are a legal assistant.",
		SessionID:         "s1",
		UserText:          "Refund?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Consumers have a right to a refund.", reply)
	assert.Contains(t, seen, "systemInstruction")
}

func TestGeminiCompleterUpstreamError(t *testing.T) {
	srv := newGeminiTestServer(t, http.StatusInternalServerError,
		`{"error":{"code":500,"message":"backend unavailable","status":"INTERNAL"}}`, nil)

	c, err := NewGeminiCompleter(context.Background(), GeminiConfig{
		APIKey: "test", Model: "gemini-2.5-pro", BaseURL: srv.URL + "/",
	}, observability.Discard())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), CompletionRequest{UserText: "hi"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindGateway))
}

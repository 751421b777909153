package ai

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
)

// GeminiConfig configures the Gemini API backend.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint.
	BaseURL string
}

// GeminiCompleter calls GenerateContent with the system instruction set on
// every request.
type GeminiCompleter struct {
	client    *genai.Client
	modelName string
	log       *slog.Logger
}

// NewGeminiCompleter creates the client.
func NewGeminiCompleter(ctx context.Context, cfg GeminiConfig, log *slog.Logger) (*GeminiCompleter, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiCompleter{client: client, modelName: cfg.Model, log: log}, nil
}

// Complete implements Completer.
func (g *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(req.UserText, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemInstruction, genai.RoleUser),
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", apperr.Gateway("ai.gemini", fmt.Errorf("generate content: %w", err))
	}

	text := res.Text()
	if text == "" {
		return "", apperr.Gateway("ai.gemini", ErrEmptyCompletion)
	}

	observability.LoggerFromContext(ctx, g.log).Info("generated response",
		"session_id", req.SessionID, "model", g.modelName, "length", len(text))
	return text, nil
}

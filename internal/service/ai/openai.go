package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
)

// OpenAIConfig configures an OpenAI compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// OpenAICompleter calls the chat completions API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	log    *slog.Logger
}

// NewOpenAICompleter builds a client; an empty BaseURL keeps the public API.
func NewOpenAICompleter(cfg OpenAIConfig, log *slog.Logger) *OpenAICompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		log:    log,
	}
}

// Complete implements Completer. The session id travels as the user field.
func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: req.UserText},
		},
		User: req.SessionID,
	})
	if err != nil {
		return "", apperr.Gateway("ai.openai", fmt.Errorf("model %s: %w", c.model, err))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperr.Gateway("ai.openai", ErrEmptyCompletion)
	}

	text := resp.Choices[0].Message.Content
	observability.LoggerFromContext(ctx, c.log).Info("generated response",
		"session_id", req.SessionID, "model", c.model, "length", len(text))
	return text, nil
}

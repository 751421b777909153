// Package ai turns one user message plus a system instruction into one
// assistant reply. Every provider is stateless: no history is forwarded.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zhouzirui/legal-chat/backend/internal/config"
)

// ErrEmptyCompletion is wrapped when a provider answers without text.
var ErrEmptyCompletion = errors.New("empty completion")

// CompletionRequest is a single stateless completion.
type CompletionRequest struct {
	SystemInstruction string
	// SessionID is forwarded where the provider supports per-user scoping and
	// otherwise only logged.
	SessionID string
	UserText  string
}

// Completer produces the assistant reply for one request.
// Failures are apperr gateway errors.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewCompleter builds the provider selected in cfg.
func NewCompleter(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log = log.With("provider", cfg.Provider)

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}, log)
	case config.ProviderArk:
		chatModel, err := cfg.NewArkChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create ark chat model: %w", err)
		}
		return NewChainCompleter(ctx, chatModel, log)
	case config.ProviderOpenAI:
		return NewOpenAICompleter(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, log), nil
	case config.ProviderMock:
		return NewMockCompleter(), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}

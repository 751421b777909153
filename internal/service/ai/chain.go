package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
)

// ChainCompleter runs a system+user prompt template through an eino chat model.
type ChainCompleter struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	log   *slog.Logger
}

// NewChainCompleter compiles the prompt chain around chatModel.
func NewChainCompleter(ctx context.Context, chatModel model.ChatModel, log *slog.Logger) (*ChainCompleter, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ChainCompleter{chain: runnable, log: log}, nil
}

// Complete implements Completer.
func (c *ChainCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	response, err := c.chain.Invoke(ctx, map[string]any{
		"system": req.SystemInstruction,
		"query":  req.UserText,
	})
	if err != nil {
		return "", apperr.Gateway("ai.chain", err)
	}

	text := strings.TrimSpace(response.Content)
	if text == "" {
		return "", apperr.Gateway("ai.chain", ErrEmptyCompletion)
	}

	observability.LoggerFromContext(ctx, c.log).Info("generated response",
		"session_id", req.SessionID, "length", len(response.Content))
	return response.Content, nil
}

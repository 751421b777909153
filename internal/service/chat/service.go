// Package chat runs one conversational turn: persist the question, ask the
// model, persist the answer.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
	"github.com/zhouzirui/legal-chat/backend/internal/service/ai"
	"github.com/zhouzirui/legal-chat/backend/internal/store"
)

var ErrSessionRequired = errors.New("session_id is required")

// Options tunes a Service.
type Options struct {
	// SystemInstruction is sent with every completion.
	SystemInstruction string
	// RollbackOnGatewayFailure removes the stored user turn when the
	// completion fails. Off by default: the turn stays without a reply.
	RollbackOnGatewayFailure bool
	Logger                   *slog.Logger
}

// Service coordinates the message store and the completer.
type Service struct {
	store     store.MessageStore
	completer ai.Completer
	validate  *validator.Validate
	opts      Options
	log       *slog.Logger
}

// NewService wires the session service.
func NewService(messages store.MessageStore, completer ai.Completer, opts Options) *Service {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	log := opts.Logger
	if log == nil {
		log = observability.Logger()
	}

	return &Service{
		store:     messages,
		completer: completer,
		validate:  validate,
		opts:      opts,
		log:       log.With("component", "chat"),
	}
}

// Chat stores the user turn, requests a completion and stores the reply
// before returning it.
func (s *Service) Chat(ctx context.Context, req chat.ChatRequest) (*chat.ChatReply, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx, s.log).With("session_id", req.SessionID)

	userTurn := chat.NewMessage(req.SessionID, chat.RoleUser, req.Message)
	if err := s.store.Append(ctx, userTurn); err != nil {
		log.Error("persist user turn failed", "error", err)
		return nil, err
	}

	reply, err := s.completer.Complete(ctx, ai.CompletionRequest{
		SystemInstruction: s.opts.SystemInstruction,
		SessionID:         req.SessionID,
		UserText:          req.Message,
	})
	if err != nil {
		log.Error("completion failed", "error", err, "rollback", s.opts.RollbackOnGatewayFailure)
		if s.opts.RollbackOnGatewayFailure {
			if rerr := s.store.Remove(ctx, req.SessionID, userTurn.ID); rerr != nil {
				log.Error("rollback user turn failed", "message_id", userTurn.ID, "error", rerr)
			}
		}
		if apperr.KindOf(err) == "" {
			err = apperr.Gateway("chat.complete", err)
		}
		return nil, err
	}

	assistantTurn := chat.NewMessage(req.SessionID, chat.RoleAssistant, reply)
	if err := s.store.Append(ctx, assistantTurn); err != nil {
		log.Error("persist assistant turn failed", "error", err)
		return nil, err
	}

	log.Info("chat turn completed", "reply_length", len(reply))
	return &chat.ChatReply{Response: reply, SessionID: req.SessionID}, nil
}

// History lists the session turns oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if sessionID == "" {
		return nil, apperr.Validation("chat.history", ErrSessionRequired)
	}
	return s.store.ListBySession(ctx, sessionID)
}

// ClearHistory deletes every turn of the session. Clearing an empty session
// reports zero.
func (s *Service) ClearHistory(ctx context.Context, sessionID string) (*chat.DeleteResult, error) {
	if sessionID == "" {
		return nil, apperr.Validation("chat.clear", ErrSessionRequired)
	}

	n, err := s.store.DeleteBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx, s.log).Info("history cleared", "session_id", sessionID, "deleted", n)
	return &chat.DeleteResult{DeletedCount: n, SessionID: sessionID}, nil
}

func (s *Service) validateRequest(req chat.ChatRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("chat.validate", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return apperr.Validation("chat.validate", errors.New(strings.Join(fields, "; ")))
}

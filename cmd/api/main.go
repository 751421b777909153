package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/legal-chat/backend/internal/config"
	"github.com/zhouzirui/legal-chat/backend/internal/handler"
	"github.com/zhouzirui/legal-chat/backend/internal/model/persona"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
	"github.com/zhouzirui/legal-chat/backend/internal/service/ai"
	"github.com/zhouzirui/legal-chat/backend/internal/service/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded, using process environment", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := observability.Init(cfg.Server.LogLevel)

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	messages, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := messages.Close(closeCtx); err != nil {
			log.Error("failed to close message store", "error", err)
		}
	}()

	completer, err := ai.NewCompleter(ctx, cfg.AI, log)
	if err != nil {
		return err
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	instruction, err := ai.NewPromptBuilder(personaStore).SystemInstruction(cfg.Chat.PersonaID)
	if err != nil {
		return err
	}

	chatService := chat.NewService(messages, completer, chat.Options{
		SystemInstruction:        instruction,
		RollbackOnGatewayFailure: cfg.Chat.RollbackOnGatewayFailure,
		Logger:                   log,
	})

	router := handler.NewRouter(handler.Deps{
		Personas:    personaStore,
		Chat:        chatService,
		Greeting:    cfg.Chat.Greeting,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info("legal chat backend listening",
		"addr", srv.Addr, "store", cfg.Store.Driver, "provider", cfg.AI.Provider, "persona", cfg.Chat.PersonaID)
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

package chat

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/legal-chat/backend/internal/apperr"
	"github.com/zhouzirui/legal-chat/backend/internal/model/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/observability"
	"github.com/zhouzirui/legal-chat/backend/pkg/utils"
)

// Service is the session service as seen by the HTTP layer.
type Service interface {
	Chat(ctx context.Context, req chat.ChatRequest) (*chat.ChatReply, error)
	History(ctx context.Context, sessionID string) ([]chat.Message, error)
	ClearHistory(ctx context.Context, sessionID string) (*chat.DeleteResult, error)
}

// Handler serves the chat endpoints.
type Handler struct {
	svc      Service
	greeting string
}

func New(svc Service, greeting string) *Handler {
	return &Handler{svc: svc, greeting: greeting}
}

// RegisterRoutes mounts the handlers on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Post("/chat", h.handleChat)
	r.Get("/chat/history/{session_id}", h.handleHistory)
	r.Delete("/chat/history/{session_id}", h.handleClearHistory)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": h.greeting})
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, r, "Chat error: ", apperr.Validation("chat.decode", err))
		return
	}

	reply, err := h.svc.Chat(r.Context(), req)
	if err != nil {
		fail(w, r, "Chat error: ", err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.History(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		fail(w, r, "Error fetching history: ", err)
		return
	}

	if messages == nil {
		messages = []chat.Message{}
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ClearHistory(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		fail(w, r, "Error clearing history: ", err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, res)
}

// fail logs err with its kind and answers 500 whatever the kind.
func fail(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	observability.LoggerFromContext(r.Context(), nil).Error("request failed",
		"path", r.URL.Path, "kind", apperr.KindOf(err), "error", err)
	utils.RespondDetail(w, http.StatusInternalServerError, prefix+err.Error())
}

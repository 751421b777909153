package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/legal-chat/backend/internal/handler/chat"
	"github.com/zhouzirui/legal-chat/backend/internal/handler/persona"
	middlewarePkg "github.com/zhouzirui/legal-chat/backend/internal/middleware"
	personaModel "github.com/zhouzirui/legal-chat/backend/internal/model/persona"
	"github.com/zhouzirui/legal-chat/backend/pkg/utils"
)

// Deps are the services the router needs.
type Deps struct {
	Personas    personaModel.Store
	Chat        chat.Service
	Greeting    string
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.CORSOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		chat.New(deps.Chat, deps.Greeting).RegisterRoutes(api)
		persona.New(deps.Personas).RegisterRoutes(api)
	})

	return r
}

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arunalab/aruna/backend/internal/handler/chat"
	middlewarePkg "github.com/arunalab/aruna/backend/internal/middleware"
	conversation "github.com/arunalab/aruna/backend/internal/service/conversation"
	"github.com/arunalab/aruna/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(convSvc *conversation.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(convSvc)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{
				"status": "ok",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
		})
	})

	return r
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"persona-chat/internal/handlers"
	"persona-chat/internal/middleware"
	"persona-chat/internal/websocket"
)

func New(
	sessionAuth *middleware.SessionAuth,
	sessionHandler *handlers.SessionHandler,
	chatHandler *handlers.ChatHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/options", sessionHandler.Options)
		r.Post("/sessions", sessionHandler.Create)

		// ──── Conversation Routes ────
		r.Route("/conversation", func(r chi.Router) {
			r.Use(sessionAuth.Middleware)
			r.Get("/", chatHandler.GetConversation)
			r.Put("/persona", chatHandler.SetPersona)
			r.Put("/custom-persona", chatHandler.SetCustomPersona)
			r.Put("/settings", chatHandler.UpdateSettings)
			r.Post("/messages", chatHandler.SendMessage)
			r.Post("/reset", chatHandler.Reset)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}

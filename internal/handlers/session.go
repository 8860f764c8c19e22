package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"persona-chat/internal/conversation"
	"persona-chat/internal/middleware"
	"persona-chat/internal/models"
)

type sessionCreator interface {
	Create() (uuid.UUID, *conversation.State)
}

type tokenIssuer interface {
	GenerateToken(sessionID uuid.UUID) (string, error)
}

type SessionHandler struct {
	sessions     sessionCreator
	tokens       tokenIssuer
	chat         *ChatHandler
	defaults     conversation.Settings
	secureCookie bool
}

func NewSessionHandler(sessions sessionCreator, tokens tokenIssuer, chat *ChatHandler, defaults conversation.Settings, secureCookie bool) *SessionHandler {
	return &SessionHandler{
		sessions:     sessions,
		tokens:       tokens,
		chat:         chat,
		defaults:     defaults,
		secureCookie: secureCookie,
	}
}

// Create starts a new conversation and hands back its token, both in the
// body and as a cookie.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, state := h.sessions.Create()

	token, err := h.tokens.GenerateToken(id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusCreated, models.SessionResponse{
		SessionID:    id.String(),
		Token:        token,
		Conversation: h.chat.view(state),
	})
}

func (h *SessionHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.OptionsResponse{
		Models:       conversation.Models(),
		DefaultModel: h.defaults.Model,
		Personas:     conversation.PersonaNames(),
		Temperature: models.Range{
			Min:     conversation.MinTemperature,
			Max:     conversation.MaxTemperature,
			Step:    conversation.TemperatureStep,
			Default: h.defaults.Temperature,
		},
		TokenBudget: models.Range{
			Min:     conversation.MinTokenBudget,
			Max:     conversation.MaxTokenBudget,
			Step:    conversation.TokenBudgetStep,
			Default: float64(h.defaults.TokenBudget),
		},
	})
}

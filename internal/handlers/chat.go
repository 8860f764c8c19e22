package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"persona-chat/internal/conversation"
	"persona-chat/internal/middleware"
	"persona-chat/internal/models"
	"persona-chat/internal/render"
	"persona-chat/internal/websocket"
)

type publisher interface {
	Publish(sessionID uuid.UUID, msg websocket.Message)
}

type tokenCounter interface {
	Count(model string, messages []conversation.Message) int
}

// ChatHandler serves the conversation of the session resolved by
// middleware.SessionAuth.
type ChatHandler struct {
	hub    publisher
	tokens tokenCounter
}

func NewChatHandler(hub publisher, tokens tokenCounter) *ChatHandler {
	return &ChatHandler{hub: hub, tokens: tokens}
}

func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	state := middleware.GetState(r.Context())
	writeJSON(w, http.StatusOK, h.view(state))
}

func (h *ChatHandler) SetPersona(w http.ResponseWriter, r *http.Request) {
	var req models.PersonaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	state := middleware.GetState(r.Context())
	state.SetPersona(req.Name)

	h.respondUpdated(w, r, state)
}

func (h *ChatHandler) SetCustomPersona(w http.ResponseWriter, r *http.Request) {
	var req models.CustomPersonaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	state := middleware.GetState(r.Context())
	if err := state.SetCustomMessage(req.Message); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.respondUpdated(w, r, state)
}

func (h *ChatHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	state := middleware.GetState(r.Context())
	err := state.UpdateSettings(conversation.Settings{
		Model:       req.Model,
		Temperature: req.Temperature,
		TokenBudget: req.TokenBudget,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.respondUpdated(w, r, state)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	state := middleware.GetState(r.Context())
	exchange, err := state.SubmitTurn(r.Context(), req.Message, conversation.SubmitOptions{
		TokenBudget: req.TokenBudget,
		Temperature: req.Temperature,
		Persona:     req.Persona,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := models.ChatResponse{Appended: []conversation.Turn{}}
	if exchange != nil {
		resp.Appended = []conversation.Turn{exchange.User, exchange.Assistant}
		resp.Failed = exchange.Failed()
		if exchange.Failed() {
			log.Warn().
				Err(exchange.Failure).
				Stringer("session", middleware.GetSessionID(r.Context())).
				Msg("Completion failed; recorded error turn")
		}
	}
	resp.Conversation = h.view(state)

	if exchange != nil {
		h.publish(r, models.WSConversationUpdated, resp.Conversation)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	state := middleware.GetState(r.Context())
	state.Reset()

	view := h.view(state)
	h.publish(r, models.WSConversationReset, view)
	writeJSON(w, http.StatusOK, view)
}

func (h *ChatHandler) respondUpdated(w http.ResponseWriter, r *http.Request, state *conversation.State) {
	view := h.view(state)
	h.publish(r, models.WSConversationUpdated, view)
	writeJSON(w, http.StatusOK, view)
}

func (h *ChatHandler) publish(r *http.Request, msgType string, view models.ConversationView) {
	if h.hub == nil {
		return
	}
	h.hub.Publish(middleware.GetSessionID(r.Context()), websocket.Message{Type: msgType, Payload: view})
}

func (h *ChatHandler) view(state *conversation.State) models.ConversationView {
	snapshot := state.Snapshot()

	html, err := render.HTML(snapshot.Turns)
	if err != nil {
		log.Warn().Err(err).Msg("Transcript render failed")
	}

	v := models.ConversationView{View: snapshot, TranscriptHTML: html}
	if h.tokens != nil {
		v.PromptTokens = h.tokens.Count(snapshot.Settings.Model, state.PendingMessages())
	}
	return v
}

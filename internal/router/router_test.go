package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/conversation"
	"persona-chat/internal/handlers"
	"persona-chat/internal/middleware"
	"persona-chat/internal/models"
	"persona-chat/internal/session"
	"persona-chat/internal/websocket"
)

type echoCompleter struct{}

func (echoCompleter) Complete(ctx context.Context, req conversation.CompletionRequest) (string, error) {
	last := req.Messages[len(req.Messages)-1]
	return "echo: " + last.Content, nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := session.NewStore(echoCompleter{}, conversation.DefaultSettings(), 0)
	t.Cleanup(store.Close)

	auth := middleware.NewSessionAuth("test-secret", store)
	hub := websocket.NewHub(auth, store, "http://localhost:5173")
	chat := handlers.NewChatHandler(hub, nil)
	sessions := handlers.NewSessionHandler(store, auth, chat, conversation.DefaultSettings(), false)

	return New(auth, sessions, chat, hub, "http://localhost:5173")
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Health(t *testing.T) {
	rr := do(t, newTestServer(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_ConversationRequiresSession(t *testing.T) {
	rr := do(t, newTestServer(t), http.MethodGet, "/api/v1/conversation/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_ChatFlow(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created models.SessionResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))
	token := created.Token

	rr = do(t, h, http.MethodPut, "/api/v1/conversation/persona", token, models.PersonaRequest{Name: conversation.PersonaConciseExpert})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/v1/conversation/messages", token, models.ChatRequest{Message: "Hello"})
	require.Equal(t, http.StatusOK, rr.Code)
	var chat models.ChatResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&chat))
	require.Len(t, chat.Appended, 2)
	assert.Equal(t, "echo: Hello", chat.Appended[1].Content)

	rr = do(t, h, http.MethodGet, "/api/v1/conversation/", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var view models.ConversationView
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Len(t, view.Turns, 2)
	assert.Equal(t, conversation.PersonaConciseExpert, view.Persona)

	rr = do(t, h, http.MethodPost, "/api/v1/conversation/reset", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/conversation/", token, nil)
	view = models.ConversationView{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&view))
	assert.Empty(t, view.Turns)
	assert.Empty(t, view.Persona)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/conversation"
)

type stubSessions map[uuid.UUID]*conversation.State

func (s stubSessions) Get(id uuid.UUID) (*conversation.State, bool) {
	state, ok := s[id]
	return state, ok
}

func okHandler(t *testing.T, want *conversation.State) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Same(t, want, GetState(r.Context()))
		assert.NotEqual(t, uuid.Nil, GetSessionID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuth_RoundTrip(t *testing.T) {
	auth := NewSessionAuth("secret", nil)
	id := uuid.New()

	token, err := auth.GenerateToken(id)
	require.NoError(t, err)

	got, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	_, hasExp := parsed.Claims.(jwt.MapClaims)["exp"]
	assert.False(t, hasExp)

	other := NewSessionAuth("different", nil)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestSessionAuth_Expired(t *testing.T) {
	auth := NewSessionAuth("secret", nil)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": uuid.NewString(),
		"exp":        time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := token.SignedString(auth.Secret)
	require.NoError(t, err)

	_, err = auth.ParseToken(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSessionAuth_Middleware(t *testing.T) {
	id := uuid.New()
	state := conversation.NewState(nil, conversation.DefaultSettings())
	auth := NewSessionAuth("secret", stubSessions{id: state})
	token, err := auth.GenerateToken(id)
	require.NoError(t, err)

	unknown, err := auth.GenerateToken(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) }, http.StatusOK},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bad scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) }, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"unknown session", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+unknown) }, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/conversation", nil)
			tc.setup(req)
			rr := httptest.NewRecorder()

			auth.Middleware(okHandler(t, state)).ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
}

func TestCORS(t *testing.T) {
	h := CORS("http://localhost:5173")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/conversation", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/conversation", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

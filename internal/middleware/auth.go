package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"persona-chat/internal/conversation"
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
	StateKey     contextKey = "conversation_state"
)

const SessionCookie = "chat_session"

var ErrInvalidSession = errors.New("invalid session token")

// SessionLookup resolves a session ID to its live conversation.
type SessionLookup interface {
	Get(id uuid.UUID) (*conversation.State, bool)
}

type SessionAuth struct {
	Secret   []byte
	sessions SessionLookup
}

func NewSessionAuth(secret string, sessions SessionLookup) *SessionAuth {
	return &SessionAuth{Secret: []byte(secret), sessions: sessions}
}

// GenerateToken signs a token naming the session. The token carries no
// expiry; a session lives as long as the store keeps it, which is extended
// by every request.
func (a *SessionAuth) GenerateToken(sessionID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"session_id": sessionID.String(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.Secret)
}

// ParseToken verifies tokenStr and returns the session it names.
func (a *SessionAuth) ParseToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.Secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidSession
	}

	idStr, ok := claims["session_id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidSession
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return id, nil
}

// Middleware resolves the session from a Bearer token or the session cookie
// and attaches its ID and conversation to the request context.
func (a *SessionAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, ok := tokenFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing session token", r)
			return
		}

		sessionID, err := a.ParseToken(tokenStr)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "SESSION_EXPIRED", "Session has expired", r)
			} else {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid session token", r)
			}
			return
		}

		state, ok := a.sessions.Get(sessionID)
		if !ok {
			writeError(w, http.StatusUnauthorized, "SESSION_EXPIRED", "Session not found", r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sessionID, state)))
	})
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		return parts[1], true
	}

	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

// GetSessionID extracts session_id from request context
func GetSessionID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(SessionIDKey).(uuid.UUID)
	return id
}

// GetState returns the conversation attached by Middleware.
func GetState(ctx context.Context) *conversation.State {
	state, _ := ctx.Value(StateKey).(*conversation.State)
	return state
}

// WithSession attaches a session to ctx the way Middleware does.
func WithSession(ctx context.Context, id uuid.UUID, state *conversation.State) context.Context {
	ctx = context.WithValue(ctx, SessionIDKey, id)
	return context.WithValue(ctx, StateKey, state)
}

func writeError(w http.ResponseWriter, status int, code, message string, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"request_id": requestID,
		},
	})
}

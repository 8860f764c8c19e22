package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"persona-chat/internal/middleware"
)

const writeWait = 10 * time.Second

// TokenParser resolves a session token to its session ID.
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

// Message is the envelope pushed to browsers.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// client serialises writes to one connection; gorilla allows a single
// concurrent writer.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub pushes conversation updates to every open tab of a session.
type Hub struct {
	mu          sync.Mutex
	connections map[uuid.UUID][]*client
	tokens      TokenParser
	sessions    middleware.SessionLookup
	upgrader    websocket.Upgrader
}

func NewHub(tokens TokenParser, sessions middleware.SessionLookup, frontendURL string) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*client),
		tokens:      tokens,
		sessions:    sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == frontendURL
			},
		},
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.tokens.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, ok := h.sessions.Get(sessionID); !ok {
		http.Error(w, "Session not found", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn}
	h.registerConnection(sessionID, c)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(sessionID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) registerConnection(sessionID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionID] = append(h.connections[sessionID], c)
	log.Debug().Stringer("session", sessionID).Int("total", len(h.connections[sessionID])).Msg("WebSocket connected")
}

func (h *Hub) unregisterConnection(sessionID uuid.UUID, c *client) {
	h.mu.Lock()
	h.removeLocked(sessionID, c)
	h.mu.Unlock()

	c.conn.Close()
	log.Debug().Stringer("session", sessionID).Msg("WebSocket disconnected")
}

func (h *Hub) removeLocked(sessionID uuid.UUID, c *client) {
	conns := h.connections[sessionID]
	for i, existing := range conns {
		if existing == c {
			h.connections[sessionID] = append(conns[:i:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
	}
}

// Publish sends msg to every connection of the session. Connections that
// fail to accept the write are dropped. Writes happen outside the hub lock.
func (h *Hub) Publish(sessionID uuid.UUID, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("WebSocket message marshal failed")
		return
	}

	h.mu.Lock()
	targets := append([]*client(nil), h.connections[sessionID]...)
	h.mu.Unlock()

	var failed []*client
	for _, c := range targets {
		if err := c.write(data); err != nil {
			failed = append(failed, c)
		}
	}
	if len(failed) == 0 {
		return
	}

	h.mu.Lock()
	for _, c := range failed {
		h.removeLocked(sessionID, c)
	}
	h.mu.Unlock()
	for _, c := range failed {
		c.conn.Close()
	}
}

// CloseSession disconnects every connection of the session. The store
// calls it when a session expires.
func (h *Hub) CloseSession(sessionID uuid.UUID) {
	h.mu.Lock()
	conns := h.connections[sessionID]
	delete(h.connections, sessionID)
	h.mu.Unlock()

	for _, c := range conns {
		c.conn.Close()
	}
	if len(conns) > 0 {
		log.Debug().Stringer("session", sessionID).Int("closed", len(conns)).Msg("WebSocket session closed")
	}
}

func (h *Hub) ConnectionCount(sessionID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections[sessionID])
}

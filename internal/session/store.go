package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"persona-chat/internal/conversation"
)

type entry struct {
	state    *conversation.State
	lastSeen time.Time
}

// Store keeps one conversation per browser session in memory. Sessions idle
// for longer than ttl are dropped by a background sweep.
type Store struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*entry
	completer conversation.Completer
	defaults  conversation.Settings
	ttl       time.Duration
	onExpire  func(id uuid.UUID)
	done      chan struct{}
	closeOnce sync.Once
}

func NewStore(completer conversation.Completer, defaults conversation.Settings, ttl time.Duration) *Store {
	s := &Store{
		sessions:  make(map[uuid.UUID]*entry),
		completer: completer,
		defaults:  defaults,
		ttl:       ttl,
		done:      make(chan struct{}),
	}

	if ttl > 0 {
		go s.sweepLoop()
	}

	return s
}

// Create starts a session with the default persona selected.
func (s *Store) Create() (uuid.UUID, *conversation.State) {
	state := conversation.NewState(s.completer, s.defaults)
	state.SetPersona(conversation.PersonaHelpfulAssistant)

	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = &entry{state: state, lastSeen: time.Now()}
	s.mu.Unlock()

	return id, state
}

func (s *Store) Get(id uuid.UUID) (*conversation.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.state, true
}

// OnExpire registers fn to run, outside the store lock, for every session
// the sweep drops.
func (s *Store) OnExpire(fn func(id uuid.UUID)) {
	s.mu.Lock()
	s.onExpire = fn
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			if n := s.sweep(now); n > 0 {
				log.Info().Int("expired", n).Msg("Expired idle chat sessions")
			}
		}
	}
}

func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	var expired []uuid.UUID
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	onExpire := s.onExpire
	s.mu.Unlock()

	if onExpire != nil {
		for _, id := range expired {
			onExpire(id)
		}
	}
	return len(expired)
}

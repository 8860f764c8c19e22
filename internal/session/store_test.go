package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/conversation"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore(nil, conversation.DefaultSettings(), 0)
	defer s.Close()

	id, state := s.Create()
	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Same(t, state, got)
	assert.Equal(t, conversation.PersonaHelpfulAssistant, got.Snapshot().Persona)
	assert.Equal(t, 1, s.Len())

	_, ok = s.Get(uuid.New())
	assert.False(t, ok)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := NewStore(nil, conversation.DefaultSettings(), 0)
	defer s.Close()

	_, a := s.Create()
	_, b := s.Create()
	a.SetPersona(conversation.PersonaStoryteller)

	assert.Equal(t, conversation.PersonaHelpfulAssistant, b.Snapshot().Persona)
}

func TestStore_Sweep(t *testing.T) {
	s := NewStore(nil, conversation.DefaultSettings(), time.Hour)
	defer s.Close()

	var expired []uuid.UUID
	s.OnExpire(func(id uuid.UUID) { expired = append(expired, id) })

	stale, _ := s.Create()
	fresh, _ := s.Create()
	s.sessions[stale].lastSeen = time.Now().Add(-2 * time.Hour)

	assert.Equal(t, 1, s.sweep(time.Now()))
	assert.Equal(t, []uuid.UUID{stale}, expired)
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get(stale)
	assert.False(t, ok)
	_, ok = s.Get(fresh)
	assert.True(t, ok)
}

func TestStore_CloseIsIdempotent(t *testing.T) {
	s := NewStore(nil, conversation.DefaultSettings(), time.Minute)
	s.Close()
	s.Close()
}

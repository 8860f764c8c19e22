package conversation

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the visible conversation. Turns are never edited
// after they are appended.
type Turn struct {
	ID        uuid.UUID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func newTurn(role Role, content string, now time.Time) Turn {
	return Turn{
		ID:        uuid.New(),
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
	}
}

// Message is a single entry of a completion request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// BuildMessages assembles the request sent to the completion service: the
// system message first, then prior user and assistant turns in order, then
// the new user message. Turns with any other role are skipped.
func BuildMessages(systemMessage string, history []Turn, userText string) []Message {
	msgs := make([]Message, 0, len(history)+2)
	msgs = append(msgs, Message{Role: RoleSystem, Content: systemMessage})
	for _, t := range history {
		if t.Role != RoleUser && t.Role != RoleAssistant {
			continue
		}
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: userText})
	return msgs
}

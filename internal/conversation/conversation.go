// Package conversation owns the persisted assistant chat history: an
// append-only, chronologically ordered list of user and assistant messages,
// written to stable storage after every append.
package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one exchanged message. Immutable once created; only ever
// appended, never mutated.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage stamps a new message with an ID and the current time.
func NewChatMessage(role Role, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// Store persists the conversation with whole-list semantics: the caller
// loads, appends in memory, and writes the full list back. There is no
// incremental append at the storage boundary.
type Store interface {
	Load() ([]ChatMessage, error)
	Save(messages []ChatMessage) error
	Close() error
}

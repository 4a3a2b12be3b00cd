package conversation

import (
	"fmt"
	"sync"
)

// Log is the in-memory conversation backed by a Store. It is the single
// writer: every append goes through the Log, and each append is persisted
// before Append returns, so a crash loses at most the in-flight message.
type Log struct {
	mu       sync.Mutex
	store    Store
	messages []ChatMessage
}

// NewLog loads the persisted history into a Log.
func NewLog(store Store) (*Log, error) {
	messages, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	return &Log{store: store, messages: messages}, nil
}

// Append creates, records, and persists a new message.
func (l *Log) Append(role Role, text string) (ChatMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := NewChatMessage(role, text)
	l.messages = append(l.messages, msg)
	if err := l.store.Save(l.messages); err != nil {
		// Keep the in-memory copy; the next successful save writes it.
		return msg, fmt.Errorf("persisting conversation: %w", err)
	}
	return msg, nil
}

// Messages returns a copy of the history, oldest first.
func (l *Log) Messages() []ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of recorded messages.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

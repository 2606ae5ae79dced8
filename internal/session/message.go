// ABOUTME: Transcript message types for the chat session.
// ABOUTME: Messages are immutable once appended; readers get copies.

package session

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the transcript.
type Message struct {
	ID      string
	Role    Role
	Content string
	// Sources lists the documents the backend cited. Carried through but
	// not required for display.
	Sources   []string
	CreatedAt time.Time
}

func newMessage(role Role, content string, sources []string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Sources:   slices.Clone(sources),
		CreatedAt: time.Now(),
	}
}

// clone returns a copy that shares no mutable state with m.
func (m Message) clone() Message {
	m.Sources = slices.Clone(m.Sources)
	return m
}

package steward

import (
	"strings"

	"github.com/google/uuid"
)

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one prior turn of a conversation, as handed to a model.
type Message struct {
	// ID is an optional unique identifier for the message.
	// Used for AG-UI message correlation.
	ID      string `json:"id,omitempty"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// GenerateMessageID creates a unique message identifier.
func GenerateMessageID() string {
	return "msg-" + uuid.New().String()
}

// NewUserMessage creates a user message with a fresh ID.
func NewUserMessage(text string) Message {
	return Message{ID: GenerateMessageID(), Role: RoleUser, Content: text}
}

// NewAssistantMessage creates an assistant message with a fresh ID.
func NewAssistantMessage(text string) Message {
	return Message{ID: GenerateMessageID(), Role: RoleAssistant, Content: text}
}

// IsEmpty reports whether the message carries no text.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/steward"
)

// Role constants matching AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ToMessages converts AG-UI messages to conversation messages. Tool and
// system messages and empty messages have no place in a steward history
// and are dropped.
func ToMessages(msgs []events.Message) []ai.Message {
	result := make([]ai.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Content == nil || (msg.Role != RoleUser && msg.Role != RoleAssistant) {
			continue
		}
		m := ai.Message{ID: msg.ID, Role: ai.RoleUser, Content: *msg.Content}
		if msg.Role == RoleAssistant {
			m.Role = ai.RoleAssistant
		}
		if m.IsEmpty() {
			continue
		}
		result = append(result, m)
	}
	return result
}

// FromMessages converts a conversation history to AG-UI messages, for
// MESSAGES_SNAPSHOT events.
func FromMessages(msgs []ai.Message) []events.Message {
	result := make([]events.Message, 0, len(msgs))
	for _, msg := range msgs {
		id := msg.ID
		if id == "" {
			id = events.GenerateMessageID()
		}
		content := msg.Content
		role := RoleUser
		if msg.Role == ai.RoleAssistant {
			role = RoleAssistant
		}
		result = append(result, events.Message{ID: id, Role: role, Content: &content})
	}
	return result
}

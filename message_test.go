package steward

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMessageID(t *testing.T) {
	a := GenerateMessageID()
	b := GenerateMessageID()

	assert.True(t, strings.HasPrefix(a, "msg-"))
	assert.NotEqual(t, a, b)
}

func TestMessageConstructors(t *testing.T) {
	user := NewUserMessage("hi")
	assert.Equal(t, RoleUser, user.Role)
	assert.Equal(t, "hi", user.Content)
	assert.NotEmpty(t, user.ID)

	assistant := NewAssistantMessage("  \n")
	assert.Equal(t, RoleAssistant, assistant.Role)
	assert.True(t, assistant.IsEmpty())
	assert.False(t, user.IsEmpty())
}

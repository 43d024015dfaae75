package agui

import (
	"errors"
	"strings"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/steward"
)

// RunAgentInput represents the AG-UI protocol request for running an agent.
type RunAgentInput struct {
	ThreadID       string           `json:"thread_id"`
	RunID          string           `json:"run_id"`
	Messages       []events.Message `json:"messages"`
	Tools          []any            `json:"tools,omitempty"`
	Context        []any            `json:"context,omitempty"`
	State          any              `json:"state,omitempty"`
	ForwardedProps any              `json:"forwarded_props,omitempty"`
}

// PreparedInput is a validated request ready to start a turn.
type PreparedInput struct {
	ThreadID string
	RunID    string

	// Text is the last user message, the input of the turn.
	Text string

	// History is everything before Text. The stored conversation takes
	// precedence; History only matters to clients that keep their own.
	History []ai.Message
}

var (
	// ErrNoMessages is returned when the input contains no messages.
	ErrNoMessages = errors.New("no messages provided")

	// ErrNoUserMessage is returned when no user message carries text.
	ErrNoUserMessage = errors.New("no user message to answer")
)

// Prepare validates the input and extracts the turn's text. Frontend tools
// and state are ignored: steward's tools run server side.
func (r *RunAgentInput) Prepare() (*PreparedInput, error) {
	if len(r.Messages) == 0 {
		return nil, ErrNoMessages
	}
	messages := ToMessages(r.Messages)
	last := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleUser {
			last = i
			break
		}
	}
	if last < 0 {
		return nil, ErrNoUserMessage
	}
	return &PreparedInput{
		ThreadID: r.ThreadID,
		RunID:    r.RunID,
		Text:     strings.TrimSpace(messages[last].Content),
		History:  messages[:last],
	}, nil
}

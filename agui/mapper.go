package agui

import (
	"encoding/json"
	"fmt"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/event"
)

// RouteStep names the AG-UI step shown while the router decides.
const RouteStep = "route"

// Mapper converts the events of one turn to AG-UI events. Each content node
// that receives text becomes one text message; each tool node becomes one
// tool call whose id is derived from the node.
type Mapper struct {
	threadID string
	runID    string

	message string // open text message, if any
	routing bool
	calls   map[string]bool
}

// NewMapper creates a Mapper for a single run. Empty ids are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{threadID: threadID, runID: runID, calls: make(map[string]bool)}
}

// ThreadID returns the thread ID for this mapper.
func (m *Mapper) ThreadID() string {
	return m.threadID
}

// RunID returns the run ID for this mapper.
func (m *Mapper) RunID() string {
	return m.runID
}

// RunStarted returns a RUN_STARTED event.
func (m *Mapper) RunStarted() events.Event {
	return events.NewRunStartedEvent(m.threadID, m.runID)
}

// RunFinished closes whatever is still open and returns the final events,
// ending with RUN_FINISHED.
func (m *Mapper) RunFinished() []events.Event {
	out := m.closeOpen(nil)
	return append(out, events.NewRunFinishedEvent(m.threadID, m.runID))
}

// RunError closes whatever is still open and returns the final events,
// ending with RUN_ERROR.
func (m *Mapper) RunError(err error) []events.Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	out := m.closeOpen(nil)
	return append(out, events.NewRunErrorEvent(msg))
}

func (m *Mapper) closeOpen(out []events.Event) []events.Event {
	out = m.endRoute(out)
	out = m.endMessage(out)
	for id := range m.calls {
		out = append(out, events.NewToolCallEndEvent(id))
		delete(m.calls, id)
	}
	return out
}

// MapEvent converts one turn event into zero or more AG-UI events.
func (m *Mapper) MapEvent(e event.Event) []events.Event {
	if step, ok := e.Step.(*ai.ToolCallStep); ok && e.Type == event.StepAttached && step.ToolID == ai.RouterToolID {
		out := m.endMessage(nil)
		if m.routing {
			return out
		}
		m.routing = true
		return append(out, events.NewStepStartedEvent(RouteStep))
	}
	out := m.endRoute(nil)

	switch e.Type {
	case event.NodeAdded:
		if e.ToolID.IsZero() {
			return out
		}
		out = m.endMessage(out)
		id := callID(m.runID, e)
		m.calls[id] = true
		return append(out, events.NewToolCallStartEvent(id, e.ToolID.Name))

	case event.StepAttached:
		step, ok := e.Step.(*ai.ToolCallStep)
		if !ok || !m.calls[callID(m.runID, e)] {
			return out
		}
		args, err := json.Marshal(step.Args)
		if err != nil {
			args = []byte("{}")
		}
		return append(out, events.NewToolCallArgsEvent(callID(m.runID, e), string(args)))

	case event.ChunkAppended:
		if e.Chunk == nil {
			return out
		}
		text := e.Chunk.Text
		if e.Chunk.IsError() {
			text = e.Chunk.Message
		}
		if text == "" {
			return out
		}
		id := messageID(m.runID, e)
		if m.message != id {
			out = m.endMessage(out)
			m.message = id
			out = append(out, events.NewTextMessageStartEvent(id, events.WithRole(RoleAssistant)))
		}
		return append(out, events.NewTextMessageContentEvent(id, text))

	case event.ToolFinished:
		id := callID(m.runID, e)
		if !m.calls[id] {
			return out
		}
		delete(m.calls, id)
		out = m.endMessage(out)
		return append(out,
			events.NewToolCallEndEvent(id),
			events.NewToolCallResultEvent(events.GenerateMessageID(), id, e.Message),
		)
	}
	return out
}

func (m *Mapper) endMessage(out []events.Event) []events.Event {
	if m.message == "" {
		return out
	}
	out = append(out, events.NewTextMessageEndEvent(m.message))
	m.message = ""
	return out
}

func (m *Mapper) endRoute(out []events.Event) []events.Event {
	if !m.routing {
		return out
	}
	m.routing = false
	return append(out, events.NewStepFinishedEvent(RouteStep))
}

// Ids are scoped to the run so that a thread's messages never collide.
func callID(runID string, e event.Event) string {
	return fmt.Sprintf("%s-call-%d", runID, e.NodeID)
}

func messageID(runID string, e event.Event) string {
	return fmt.Sprintf("%s-msg-%d", runID, e.NodeID)
}

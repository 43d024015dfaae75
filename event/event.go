// Package event defines the progress events a running turn produces and the
// Stream that hands them to a driver one at a time.
//
// The event types map onto the turn's suspension points; the agui package
// translates them into AG-UI protocol events.
package event

import (
	"time"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/content"
)

// Type identifies the kind of event.
type Type string

// Content tree events
const (
	// NodeAdded fires after a node is appended to the tree, before anything
	// is written into it.
	NodeAdded Type = "node_added"

	// ChunkAppended fires after a model chunk is folded into a node.
	ChunkAppended Type = "chunk_appended"
)

// Tool lifecycle events
const (
	// StepAttached fires when a node is classified with its step. For the
	// router placeholder this is the "thinking" state.
	StepAttached Type = "step_attached"

	// ToolProgress fires for every update a running tool makes, after its
	// node has been promoted to last position.
	ToolProgress Type = "tool_progress"

	// ToolFinished fires after a tool returns and its closing observations
	// are recorded.
	ToolFinished Type = "tool_finished"
)

// Event is one suspension of a running turn.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// NodeID is the node the event concerns.
	NodeID content.ID

	// Chunk is set for ChunkAppended events.
	Chunk *ai.Chunk

	// Step is set for StepAttached events.
	Step ai.Step

	// ToolID identifies the tool for tool lifecycle events. Other events
	// raised while tools are running carry the innermost one; NodeAdded
	// carries a tool id only for the node of a tool call.
	ToolID ai.ToolID

	// Message carries additional context, such as a tool's return value.
	Message string

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Yield suspends the running turn until the driver asks for the next event.
// A non-nil error means the driver has gone away; the caller must return it
// without further side effects.
type Yield func(Event) error

package steward

import (
	"context"
	"fmt"
)

// ModelSlot is a logical role a model plays within a turn.
type ModelSlot string

const (
	SlotCore     ModelSlot = "core"
	SlotEditor   ModelSlot = "editor"
	SlotReasoner ModelSlot = "reasoner"
	SlotRouter   ModelSlot = "router"
)

// Slots lists every model slot in a stable order.
var Slots = []ModelSlot{SlotCore, SlotEditor, SlotReasoner, SlotRouter}

// ParseModelSlot validates a slot name.
func ParseModelSlot(s string) (ModelSlot, error) {
	for _, slot := range Slots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("unknown model slot %q", s)
}

// Request is a single model call.
type Request struct {
	// Input is the user text for this call, after observations and pads
	// have been folded in.
	Input        string
	History      []Message
	SystemPrompt string
	ModelID      string
	// OutputSchema, when set, asks the model for a JSON document matching
	// the schema instead of free text. The document still arrives as text
	// chunks.
	OutputSchema *ResponseSchema
}

// Messages returns the conversation for the request: history followed by the input.
func (r Request) Messages() []Message {
	msgs := make([]Message, 0, len(r.History)+1)
	msgs = append(msgs, r.History...)
	return append(msgs, Message{Role: RoleUser, Content: r.Input})
}

// LanguageModel streams a model's reply as chunks.
//
// Implementations close the returned channel after the final chunk. A
// completion-metadata chunk, when the provider reports usage, is sent last.
// Errors that happen after the stream is open are delivered as error chunks.
type LanguageModel interface {
	StreamChunks(ctx context.Context, req Request) (<-chan Chunk, error)
}

// LanguageModelFunc adapts a function to LanguageModel.
type LanguageModelFunc func(ctx context.Context, req Request) (<-chan Chunk, error)

// StreamChunks calls f.
func (f LanguageModelFunc) StreamChunks(ctx context.Context, req Request) (<-chan Chunk, error) {
	return f(ctx, req)
}

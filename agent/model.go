package agent

import (
	"context"
	"errors"
	"iter"
	"strings"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/content"
	"github.com/spetersoncode/steward/event"
	"github.com/spetersoncode/steward/internal/partialjson"
)

// ChunkRequest configures StreamChunks.
type ChunkRequest struct {
	// Content receives the call record. Defaults to the deepest last
	// descendant of the root.
	Content *content.Node
	// Input replaces the context's prompt when set.
	Input string
	// Slot selects the model. Defaults to core.
	Slot         ai.ModelSlot
	SystemPrompt string
	// SkipObserveFiles leaves pending files unobserved.
	SkipObserveFiles bool
}

// StreamChunks calls a model and yields its text and error chunks. Token
// usage reported by the model is recorded on the target node's call record
// rather than yielded.
//
// A model that fails to start streaming yields a single error chunk. The
// iterator itself only fails when ctx is done.
func (c *Context) StreamChunks(ctx context.Context, req ChunkRequest) iter.Seq2[ai.Chunk, error] {
	return func(yield func(ai.Chunk, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		slot := req.Slot
		if slot == "" {
			slot = ai.SlotCore
		}
		modelID := c.ModelFor(slot)

		if !req.SkipObserveFiles {
			c.observeFiles()
		}
		target := req.Content
		if target == nil {
			target = c.tree.Root().Deepest()
		}
		target.AddCall(content.CallMetadata{ModelID: modelID, StartedAt: c.now()})

		ch, err := c.model.StreamChunks(ctx, c.request(req.Input, req.SystemPrompt, modelID))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil || errors.Is(err, context.Canceled) {
				yield(ai.Chunk{}, errors.Join(ctxErr, err))
				return
			}
			c.logger.Warn("model call failed", "model", modelID, "slot", slot, "error", err)
			yield(ai.ErrorChunk((&ai.ModelError{ModelID: modelID, Err: err}).Error()), nil)
			return
		}

		for chunk := range ch {
			if chunk.IsMetadata() {
				c.recordUsage(target, chunk)
				continue
			}
			if !yield(chunk, nil) {
				return
			}
		}
		if err := ctx.Err(); err != nil {
			yield(ai.Chunk{}, err)
		}
	}
}

func (c *Context) recordUsage(target *content.Node, chunk ai.Chunk) {
	if chunk.Metadata == nil {
		return
	}
	call := target.LastCall()
	if call == nil {
		c.logger.Warn("completion metadata without a call record", "node", target.ID())
		call = target.AddCall(content.CallMetadata{})
	}
	call.Finish(*chunk.Metadata, c.now())
}

func (c *Context) request(input, systemPrompt, modelID string) ai.Request {
	if input == "" {
		input = c.Prompt()
	}
	return ai.Request{
		Input:        input,
		History:      c.History(),
		SystemPrompt: joinPrompts(c.basePrompt, systemPrompt),
		ModelID:      modelID,
	}
}

func joinPrompts(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// StructuredRequest configures StreamStructured.
type StructuredRequest struct {
	// Input replaces the context's prompt when set.
	Input string
	// Slot selects the model. Defaults to router.
	Slot         ai.ModelSlot
	SystemPrompt string
}

// StreamStructured asks a model for a JSON document shaped like T and
// yields successively more complete values as the document streams in.
// Consecutive duplicates are not yielded. An error chunk from the model
// ends the iteration with an error.
func StreamStructured[T any](ctx context.Context, c *Context, req StructuredRequest) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		schema, err := ai.SchemaFor[T]()
		if err != nil {
			yield(zero, err)
			return
		}

		slot := req.Slot
		if slot == "" {
			slot = ai.SlotRouter
		}
		modelID := c.ModelFor(slot)
		r := c.request(req.Input, req.SystemPrompt, modelID)
		r.OutputSchema = schema

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		ch, err := c.model.StreamChunks(ctx, r)
		if err != nil {
			yield(zero, &ai.ModelError{ModelID: modelID, Err: err})
			return
		}

		var buf strings.Builder
		last := ""
		for chunk := range ch {
			switch {
			case chunk.IsError():
				yield(zero, &ai.ModelError{ModelID: modelID, Err: errors.New(chunk.Message)})
				return
			case !chunk.IsText():
				continue
			}
			buf.WriteString(chunk.Text)

			doc, ok := partialjson.Complete(partialjson.StripFence(buf.String()))
			if !ok || doc == last {
				continue
			}
			v, ok := partialjson.Decode[T](doc)
			if !ok {
				continue
			}
			last = doc
			if !yield(v, nil) {
				return
			}
		}
		if err := ctx.Err(); err != nil {
			yield(zero, err)
		}
	}
}

// ContentRequest configures StreamToContent.
type ContentRequest struct {
	// Content is the node to write into. A fresh node is used when nil.
	Content *content.Node
	Input   string
	// SystemPrompt overrides the context's default system prompt. A
	// pointer to "" sends no system prompt beyond the base prompt.
	SystemPrompt *string
	// Slot selects the model. Defaults to core.
	Slot ai.ModelSlot
}

// StreamToContent streams a model's reply into a node appended to the
// root, reporting every chunk.
func (c *Context) StreamToContent(ctx context.Context, req ContentRequest) error {
	node := req.Content
	if node == nil {
		node = c.tree.NewNode()
	}
	c.tree.Root().AddChild(node)
	if err := c.emit(event.Event{Type: event.NodeAdded, NodeID: node.ID()}); err != nil {
		return err
	}

	systemPrompt := c.defaultSystemPrompt
	if req.SystemPrompt != nil {
		systemPrompt = *req.SystemPrompt
	}
	for chunk, err := range c.StreamChunks(ctx, ChunkRequest{
		Content:      node,
		Input:        req.Input,
		Slot:         req.Slot,
		SystemPrompt: systemPrompt,
	}) {
		if err != nil {
			return err
		}
		if err := c.AppendChunk(node, chunk); err != nil {
			return err
		}
	}
	return nil
}

// StreamInto streams a model's reply into node, which a running tool owns,
// reporting every chunk.
func (c *Context) StreamInto(ctx context.Context, node *content.Node, req ChunkRequest) error {
	req.Content = node
	for chunk, err := range c.StreamChunks(ctx, req) {
		if err != nil {
			return err
		}
		if err := c.AppendChunk(node, chunk); err != nil {
			return err
		}
	}
	return nil
}

// Package agent runs one conversational turn: it routes the user's request
// to a tool or a direct answer, dispatches tools, streams model output into
// a content tree and reports every change as an event.
//
// # Turns
//
// A Context holds the state of a single turn. Handlers drive it with
// StreamStep, CallTool, StreamToContent and the lower level StreamChunks
// and StreamStructured. Run executes a handler on its own goroutine and
// returns an event.Stream; the handler advances only while the driver is
// pulling events, so the driver may read the content tree between events
// without locking.
//
//	ac, ag, err := agent.Turn{Model: model, Agents: agents, Workspace: ws}.Start(text)
//	if err != nil {
//	    return err
//	}
//	stream := agent.RunAgent(ctx, ac, ag)
//	defer stream.Close()
//	for ev := range stream.All() {
//	    render(ac.Root(), ev)
//	}
//	return stream.Err()
//
// # Tools
//
// Tools are registered in a Registry and resolved by id. Each tool may be
// picked by the router up to its MaxUses times per context; CallTool
// bypasses the limit. A tool handler writes into the node it is given and
// reports progress with AppendChunk, Update or StreamInto.
package agent

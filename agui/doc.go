// Package agui serves steward turns over the AG-UI protocol.
//
// AG-UI (Agent-User Interface) is an event-based protocol that standardizes
// how agents stream progress to user-facing applications. A [Mapper]
// translates the events of a running turn into AG-UI events, and [Handler]
// exposes turns as a Server-Sent Events endpoint.
//
// # Event Mapping
//
// The Mapper tracks state to emit AG-UI's Start-Content-End sequences:
//
//   - router placeholder StepAttached → STEP_STARTED, closed by the next event
//   - tool NodeAdded → TOOL_CALL_START
//   - tool StepAttached → TOOL_CALL_ARGS
//   - ChunkAppended → TEXT_MESSAGE_START (first chunk of a node), TEXT_MESSAGE_CONTENT
//   - ToolFinished → TEXT_MESSAGE_END (if open), TOOL_CALL_END, TOOL_CALL_RESULT
//
// Error chunks are streamed as text so the user sees them in place.
//
// # Threads
//
// The AG-UI thread id names the stored conversation. The server keeps the
// history, so only the last user message of a request is read.
//
// The Mapper is not safe for concurrent use; create one per run.
package agui

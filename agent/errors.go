package agent

import (
	"errors"
)

// Sentinel errors for contract violations that abort a turn.
var (
	// ErrToolNotFound indicates a tool id or name that is neither registered
	// nor part of the context's tool set.
	ErrToolNotFound = errors.New("agent: tool not found")

	// ErrToolUnavailable indicates a routed tool that is over its use limit
	// or whose availability check fails.
	ErrToolUnavailable = errors.New("agent: tool not available")

	// ErrAgentNotFound indicates an unknown agent name.
	ErrAgentNotFound = errors.New("agent: agent not found")

	// ErrMissingArg is returned by Args getters for absent arguments.
	ErrMissingArg = errors.New("agent: missing argument")
)

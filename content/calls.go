package content

import (
	"slices"
	"time"

	ai "github.com/spetersoncode/steward"
)

// UnsetModelID marks a call record created without knowing its model.
const UnsetModelID = "<unset>"

// CallMetadata accounts for one model call made on behalf of a node.
type CallMetadata struct {
	ModelID           string          `json:"modelId"`
	InputTokens       int             `json:"inputTokens"`
	CachedInputTokens int             `json:"cachedInputTokens"`
	OutputTokens      int             `json:"outputTokens"`
	StartedAt         time.Time       `json:"startedAt,omitzero"`
	EndedAt           time.Time       `json:"endedAt,omitzero"`
	FinishReason      ai.FinishReason `json:"finishReason"`
}

// Duration returns how long the call took, or -1 when it has not finished.
func (c *CallMetadata) Duration() time.Duration {
	if c.StartedAt.IsZero() || c.EndedAt.IsZero() {
		return -1
	}
	return c.EndedAt.Sub(c.StartedAt)
}

// Finish records the completion metadata reported by the model.
func (c *CallMetadata) Finish(md ai.CompletionMetadata, at time.Time) {
	c.InputTokens = md.InputTokens
	c.CachedInputTokens = md.CachedInputTokens
	c.OutputTokens = md.OutputTokens
	c.FinishReason = md.FinishReason
	c.EndedAt = at
}

// AddCall appends a call record to the node and returns it.
func (n *Node) AddCall(c CallMetadata) *CallMetadata {
	if c.FinishReason == "" {
		c.FinishReason = ai.FinishUnknown
	}
	if c.ModelID == "" {
		c.ModelID = UnsetModelID
	}
	node := n.n()
	rec := &c
	node.calls = append(node.calls, rec)
	return rec
}

// LastCall returns the most recent call record, or nil.
func (n *Node) LastCall() *CallMetadata {
	calls := n.n().calls
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1]
}

// Calls returns the node's call records in order.
func (n *Node) Calls() []*CallMetadata {
	return slices.Clone(n.n().calls)
}

// Metadata returns the completion metadata the call finished with.
func (c *CallMetadata) Metadata() ai.CompletionMetadata {
	return ai.CompletionMetadata{
		InputTokens:       c.InputTokens,
		CachedInputTokens: c.CachedInputTokens,
		OutputTokens:      c.OutputTokens,
		FinishReason:      c.FinishReason,
	}
}

package app

import (
	"github.com/spetersoncode/steward/content"
	"github.com/spetersoncode/steward/model"
)

// Usage totals the model calls of a turn.
type Usage struct {
	Calls             int
	InputTokens       int
	CachedInputTokens int
	OutputTokens      int
	// Cost is the estimated USD cost of the calls to catalog models.
	Cost float64
	// Unpriced counts calls to models without catalog pricing.
	Unpriced int
}

// Usage totals every model call recorded in the turn's content tree.
func (t *Turn) Usage() Usage {
	var u Usage
	u.add(t.Context.Root())
	return u
}

func (u *Usage) add(n *content.Node) {
	for _, c := range n.Calls() {
		u.Calls++
		u.InputTokens += c.InputTokens
		u.CachedInputTokens += c.CachedInputTokens
		u.OutputTokens += c.OutputTokens
		info, ok := model.Lookup(c.ModelID)
		if !ok || !info.Pricing.Known() {
			u.Unpriced++
			continue
		}
		u.Cost += info.Pricing.Cost(c.Metadata())
	}
	for _, child := range n.Children() {
		u.add(child)
	}
}

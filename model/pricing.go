package model

import ai "github.com/spetersoncode/steward"

// Pricing is the price per million tokens in USD.
type Pricing struct {
	InputPerMillion  float64 `json:"inputPerMillion"`
	OutputPerMillion float64 `json:"outputPerMillion"`
	// CachedInputPerMillion prices input read from a prompt cache. Zero means
	// cached tokens are billed as regular input.
	CachedInputPerMillion float64 `json:"cachedInputPerMillion,omitempty"`
}

// Known reports whether the pricing carries any price.
func (p Pricing) Known() bool {
	return p.InputPerMillion > 0 || p.OutputPerMillion > 0
}

// Cost estimates the USD cost of one call. Cached input tokens are counted
// separately from InputTokens, matching CompletionMetadata.
func (p Pricing) Cost(md ai.CompletionMetadata) float64 {
	cached := p.CachedInputPerMillion
	if cached == 0 {
		cached = p.InputPerMillion
	}
	return (float64(md.InputTokens)*p.InputPerMillion +
		float64(md.CachedInputTokens)*cached +
		float64(md.OutputTokens)*p.OutputPerMillion) / 1_000_000
}

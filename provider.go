package steward

import (
	"fmt"
	"strings"
)

// Provider identifies an AI provider.
type Provider string

// String returns the provider identifier.
func (p Provider) String() string { return string(p) }

// Supported providers.
const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderGoogle     Provider = "google"
	ProviderPerplexity Provider = "perplexity"
)

// ModelID identifies a model as origin::provider::name, for example
// builtin::anthropic::claude-sonnet-4-5. Custom models use the custom origin.
type ModelID struct {
	Custom   bool
	Provider Provider
	Name     string
}

const modelIDSep = "::"

// ParseModelID parses the string form of a model id.
// A bare "provider::name" is accepted as a builtin id.
func ParseModelID(s string) (ModelID, error) {
	parts := strings.Split(s, modelIDSep)
	switch len(parts) {
	case 2:
		parts = append([]string{"builtin"}, parts...)
	case 3:
	default:
		return ModelID{}, fmt.Errorf("invalid model id %q", s)
	}
	origin, provider, name := parts[0], parts[1], parts[2]
	if origin != "builtin" && origin != "custom" {
		return ModelID{}, fmt.Errorf("invalid model id %q: unknown origin %q", s, origin)
	}
	if provider == "" || name == "" {
		return ModelID{}, fmt.Errorf("invalid model id %q", s)
	}
	return ModelID{Custom: origin == "custom", Provider: Provider(provider), Name: name}, nil
}

// String returns the canonical form of the id.
func (id ModelID) String() string {
	origin := "builtin"
	if id.Custom {
		origin = "custom"
	}
	return origin + modelIDSep + string(id.Provider) + modelIDSep + id.Name
}

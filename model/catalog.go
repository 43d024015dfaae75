// Package model is the catalog of builtin language models: which provider
// serves them, which slots they suit, and what they cost.
package model

import (
	"slices"

	ai "github.com/spetersoncode/steward"
)

// Info describes one model.
type Info struct {
	ID          ai.ModelID     `json:"id"`
	DisplayName string         `json:"displayName"`
	Slots       []ai.ModelSlot `json:"slots"`
	Recommended bool           `json:"recommended,omitempty"`
	Pricing     Pricing        `json:"pricing"`
}

// Suits reports whether the model is listed for slot.
func (i Info) Suits(slot ai.ModelSlot) bool {
	return slices.Contains(i.Slots, slot)
}

// ProviderInfo describes where a provider's credentials come from.
type ProviderInfo struct {
	ID          ai.Provider
	DisplayName string
	EnvVar      string
	SetupURL    string
}

// Providers lists the builtin providers.
var Providers = []ProviderInfo{
	{ai.ProviderAnthropic, "Anthropic", "ANTHROPIC_API_KEY", "https://console.anthropic.com/account/keys"},
	{ai.ProviderOpenAI, "OpenAI", "OPENAI_API_KEY", "https://platform.openai.com/api-keys"},
	{ai.ProviderGoogle, "Google Gemini", "GEMINI_API_KEY", "https://aistudio.google.com/app/apikey"},
	{ai.ProviderPerplexity, "Perplexity", "PERPLEXITY_API_KEY", "https://www.perplexity.ai/settings/api"},
}

var (
	core     = []ai.ModelSlot{ai.SlotCore}
	editor   = []ai.ModelSlot{ai.SlotEditor}
	reasoner = []ai.ModelSlot{ai.SlotReasoner}
)

func builtin(p ai.Provider, name string) ai.ModelID {
	return ai.ModelID{Provider: p, Name: name}
}

// Builtin lists the models known to the catalog, recommended ones first
// within each provider.
var Builtin = []Info{
	{builtin(ai.ProviderAnthropic, "claude-sonnet-4-5"), "Claude Sonnet 4.5", []ai.ModelSlot{ai.SlotCore, ai.SlotEditor}, true, Pricing{3.00, 15.00, 0.30}},
	{builtin(ai.ProviderAnthropic, "claude-opus-4-5"), "Claude Opus 4.5", []ai.ModelSlot{ai.SlotCore, ai.SlotReasoner}, false, Pricing{5.00, 25.00, 0.50}},
	{builtin(ai.ProviderAnthropic, "claude-haiku-4-5"), "Claude Haiku 4.5", []ai.ModelSlot{ai.SlotEditor, ai.SlotRouter}, false, Pricing{1.00, 5.00, 0.10}},

	{builtin(ai.ProviderOpenAI, "gpt-4.1"), "GPT 4.1", core, true, Pricing{2.00, 8.00, 0.50}},
	{builtin(ai.ProviderOpenAI, "gpt-4.1-mini"), "GPT 4.1 mini", []ai.ModelSlot{ai.SlotEditor, ai.SlotRouter}, true, Pricing{0.40, 1.60, 0.10}},
	{builtin(ai.ProviderOpenAI, "gpt-5"), "GPT 5", core, false, Pricing{1.25, 10.00, 0.125}},
	{builtin(ai.ProviderOpenAI, "gpt-5-mini"), "GPT 5 mini", editor, false, Pricing{0.25, 2.00, 0.025}},
	{builtin(ai.ProviderOpenAI, "o3"), "o3", reasoner, false, Pricing{2.00, 8.00, 0.50}},
	{builtin(ai.ProviderOpenAI, "o4-mini"), "o4 mini", reasoner, true, Pricing{1.10, 4.40, 0.275}},

	{builtin(ai.ProviderGoogle, "gemini-2.5-flash"), "Gemini 2.5 Flash", []ai.ModelSlot{ai.SlotEditor, ai.SlotRouter}, true, Pricing{0.30, 2.50, 0.075}},
	{builtin(ai.ProviderGoogle, "gemini-2.5-flash-lite"), "Gemini 2.5 Flash Lite", []ai.ModelSlot{ai.SlotRouter}, false, Pricing{0.10, 0.40, 0.025}},
	{builtin(ai.ProviderGoogle, "gemini-2.5-pro"), "Gemini 2.5 Pro", []ai.ModelSlot{ai.SlotCore, ai.SlotReasoner}, true, Pricing{1.25, 10.00, 0.31}},

	{builtin(ai.ProviderPerplexity, "sonar"), "Sonar", core, false, Pricing{1.00, 1.00, 0}},
	{builtin(ai.ProviderPerplexity, "sonar-reasoning-pro"), "Sonar Reasoning Pro", reasoner, false, Pricing{2.00, 8.00, 0}},
}

// Lookup finds a builtin model by its id string. Bare provider::name ids
// are accepted.
func Lookup(id string) (Info, bool) {
	parsed, err := ai.ParseModelID(id)
	if err != nil || parsed.Custom {
		return Info{}, false
	}
	for _, info := range Builtin {
		if info.ID == parsed {
			return info, true
		}
	}
	return Info{}, false
}

// ForSlot returns the builtin models suited to slot whose provider passes
// available, recommended models first. A nil available accepts every provider.
func ForSlot(slot ai.ModelSlot, available func(ai.Provider) bool) []Info {
	var out []Info
	for _, info := range Builtin {
		if !info.Suits(slot) || (available != nil && !available(info.ID.Provider)) {
			continue
		}
		out = append(out, info)
	}
	slices.SortStableFunc(out, func(a, b Info) int {
		switch {
		case a.Recommended == b.Recommended:
			return 0
		case a.Recommended:
			return -1
		default:
			return 1
		}
	})
	return out
}

// Defaults picks a model for every slot from the available providers. A
// slot with no suitable model falls back to the core choice; slots left
// empty mean nothing is available.
func Defaults(available func(ai.Provider) bool) map[ai.ModelSlot]string {
	out := make(map[ai.ModelSlot]string, len(ai.Slots))
	for _, slot := range ai.Slots {
		if infos := ForSlot(slot, available); len(infos) > 0 {
			out[slot] = infos[0].ID.String()
		}
	}
	if coreID, ok := out[ai.SlotCore]; ok {
		for _, slot := range ai.Slots {
			if _, ok := out[slot]; !ok {
				out[slot] = coreID
			}
		}
	}
	return out
}

package tool

import (
	"github.com/spetersoncode/steward/agent"

	ai "github.com/spetersoncode/steward"
)

// Package is the tool package of every built-in tool.
const Package = "steward"

// Built-in tool ids.
var (
	SearchCodebase = ai.ToolID{Package: Package, Name: "search_codebase"}
	EditCodebase   = ai.ToolID{Package: Package, Name: "edit_codebase"}
	WebSearch      = ai.ToolID{Package: Package, Name: "web_search"}
	GeneralExpert  = ai.ToolID{Package: Package, Name: "general_expert"}
	FetchURL       = ai.ToolID{Package: Package, Name: "fetch_url"}
)

// Option configures the built-in tools.
type Option func(*builtins)

type builtins struct {
	web         WebSearcher
	fetcher     *Fetcher
	searchLimit int
	fetchTitles bool
}

// WithWebSearch enables web_search backed by s.
func WithWebSearch(s WebSearcher) Option {
	return func(b *builtins) { b.web = s }
}

// WithFetcher sets the fetcher used by fetch_url and citation titles.
func WithFetcher(f *Fetcher) Option {
	return func(b *builtins) { b.fetcher = f }
}

// WithSearchLimit caps how many files search_codebase shortlists.
// Default is 10.
func WithSearchLimit(n int) Option {
	return func(b *builtins) { b.searchLimit = n }
}

// WithCitationTitles makes web_search fetch each cited page for its title.
func WithCitationTitles(enabled bool) Option {
	return func(b *builtins) { b.fetchTitles = enabled }
}

// RegisterBuiltins registers every built-in tool with reg.
func RegisterBuiltins(reg *agent.Registry, opts ...Option) {
	b := &builtins{searchLimit: 10}
	for _, opt := range opts {
		opt(b)
	}
	if b.fetcher == nil {
		b.fetcher = NewFetcher()
	}

	reg.Register(NewSearchCodebase(b.searchLimit))
	reg.Register(NewEditCodebase())
	reg.Register(NewGeneralExpert())
	reg.Register(NewFetchURL(b.fetcher))

	var titles *Fetcher
	if b.fetchTitles {
		titles = b.fetcher
	}
	reg.Register(NewWebSearch(b.web, titles))
}

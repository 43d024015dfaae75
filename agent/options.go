package agent

import (
	"log/slog"
	"maps"
	"time"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/pad"
	"github.com/spetersoncode/steward/workspace"
)

// FileReader reads workspace files for observation.
type FileReader interface {
	ReadFile(path string) (string, error)
}

// Option configures a Context.
type Option func(*Context)

// WithHistory sets the prior messages of the conversation.
func WithHistory(history []ai.Message) Option {
	return func(c *Context) { c.history = history }
}

// WithBasePrompt sets text prepended to every system prompt.
func WithBasePrompt(p string) Option {
	return func(c *Context) { c.basePrompt = p }
}

// WithDefaultSystemPrompt overrides the system prompt StreamToContent uses
// when the caller passes none.
func WithDefaultSystemPrompt(p string) Option {
	return func(c *Context) { c.defaultSystemPrompt = p }
}

// WithModels maps model slots to model ids. Slots missing from the map
// fall back to the core slot.
func WithModels(models map[ai.ModelSlot]string) Option {
	return func(c *Context) { maps.Copy(c.models, models) }
}

// WithRegistry sets the tool registry. The context starts with an empty
// tool set; see WithTools.
func WithRegistry(r *Registry) Option {
	return func(c *Context) { c.registry = r }
}

// WithPads sets the pad store.
func WithPads(s pad.Store) Option {
	return func(c *Context) { c.pads = s }
}

// WithWorkspace sets the workspace files are observed from and tools search.
func WithWorkspace(r *workspace.Reader) Option {
	return func(c *Context) {
		c.workspace = r
		c.files = r
	}
}

// WithFileReader sets only the reader used for file observation.
func WithFileReader(r FileReader) Option {
	return func(c *Context) { c.files = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithHashtags sets the hashtags found in the user's input.
func WithHashtags(tags ...string) Option {
	return func(c *Context) { c.hashtags = append(c.hashtags, tags...) }
}

// WithPadIDs preselects pads, for example from #pad: tokens.
func WithPadIDs(ids ...string) Option {
	return func(c *Context) { addAll(c.padIDs, ids) }
}

// WithUsedPadIDs marks pads already rendered in an earlier turn.
func WithUsedPadIDs(ids ...string) Option {
	return func(c *Context) { addAll(c.usedPadIDs, ids) }
}

// WithObservedFiles records files and the content last shown to the model.
// Those files are not observed again unless their content changed, which
// input processing checks.
func WithObservedFiles(files map[string]string) Option {
	return func(c *Context) { maps.Copy(c.observedFiles, files) }
}

// WithTools sets the tool set the router is offered until StreamStep is
// given one. Ids missing from the registry are skipped with a warning.
func WithTools(ids ...ai.ToolID) Option {
	return func(c *Context) { c.initialTools = append(c.initialTools, ids...) }
}

// WithClock sets the time source for observations and call records.
func WithClock(now func() time.Time) Option {
	return func(c *Context) { c.now = now }
}

func addAll(set map[string]struct{}, ids []string) {
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

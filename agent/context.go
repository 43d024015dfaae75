package agent

import (
	"log/slog"
	"maps"
	"slices"
	"time"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/content"
	"github.com/spetersoncode/steward/event"
	"github.com/spetersoncode/steward/pad"
	"github.com/spetersoncode/steward/workspace"
)

// Observation is a piece of text the agent has noted during the turn. All
// observations are folded into the model input by Prompt.
type Observation struct {
	Content   string
	Metadata  map[string]string
	Timestamp time.Time
}

type running struct {
	node *content.Node
	tool *Tool
}

// Context is the state of one turn. It owns the turn's content tree, its
// observations, the pads selected so far and the per-tool usage counters.
//
// A Context is not safe for concurrent use. It is driven by exactly one
// goroutine: the one Run starts, or the caller's when used synchronously.
type Context struct {
	model               ai.LanguageModel
	input               string
	basePrompt          string
	defaultSystemPrompt string
	history             []ai.Message
	models              map[ai.ModelSlot]string
	hashtags            []string

	tree      *content.Tree
	registry  *Registry
	pads      pad.Store
	files     FileReader
	workspace *workspace.Reader
	logger    *slog.Logger
	now       func() time.Time

	padIDs        map[string]struct{}
	usedPadIDs    map[string]struct{}
	filePaths     map[string]struct{}
	observedFiles map[string]string
	observations  []Observation

	initialTools []ai.ToolID
	tools        map[string]*Tool
	uses         map[string]int
	yield        event.Yield
	running      []running
}

// New creates the context for one turn. input is the user's text after
// input processing.
func New(model ai.LanguageModel, input string, opts ...Option) *Context {
	c := &Context{
		model:               model,
		input:               input,
		defaultSystemPrompt: DefaultSystemPrompt,
		models:              make(map[ai.ModelSlot]string),
		tree:                content.NewTree(),
		padIDs:              make(map[string]struct{}),
		usedPadIDs:          make(map[string]struct{}),
		filePaths:           make(map[string]struct{}),
		observedFiles:       make(map[string]string),
		uses:                make(map[string]int),
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.registry == nil {
		c.registry = NewRegistry(c.logger)
	}
	if c.pads == nil {
		c.pads = pad.NewMemoryStore()
	}
	c.tools = make(map[string]*Tool, len(c.initialTools))
	for _, id := range c.initialTools {
		t, ok := c.registry.Resolve(id)
		if !ok {
			c.logger.Warn("initial tool is not registered", "tool", id.String())
			continue
		}
		c.tools[t.Name()] = t
	}
	return c
}

// Input returns the user's text.
func (c *Context) Input() string { return c.input }

// Root returns the root of the turn's content tree.
func (c *Context) Root() *content.Node { return c.tree.Root() }

// Tree returns the turn's content tree.
func (c *Context) Tree() *content.Tree { return c.tree }

// History returns a copy of the prior messages.
func (c *Context) History() []ai.Message { return slices.Clone(c.history) }

// Hashtags returns a copy of the input's hashtags.
func (c *Context) Hashtags() []string { return slices.Clone(c.hashtags) }

// HasHashtag reports whether the input carried tag, given with its leading #.
func (c *Context) HasHashtag(tag string) bool { return slices.Contains(c.hashtags, tag) }

// Logger returns the context's logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// Workspace returns the workspace reader, or nil when none is configured.
func (c *Context) Workspace() *workspace.Reader { return c.workspace }

// Registry returns the tool registry.
func (c *Context) Registry() *Registry { return c.registry }

// ModelFor returns the model id configured for slot, falling back to the
// core slot.
func (c *Context) ModelFor(slot ai.ModelSlot) string {
	if id, ok := c.models[slot]; ok {
		return id
	}
	return c.models[ai.SlotCore]
}

// DefaultSystemPrompt returns the system prompt used for direct answers.
func (c *Context) DefaultSystemPrompt() string { return c.defaultSystemPrompt }

// Now returns the context's current time.
func (c *Context) Now() time.Time { return c.now() }

// Observe records an observation.
func (c *Context) Observe(text string, metadata map[string]string) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	c.observations = append(c.observations, Observation{Content: text, Metadata: metadata, Timestamp: c.now()})
}

// Observations returns a copy of the observations so far.
func (c *Context) Observations() []Observation { return slices.Clone(c.observations) }

// AddFilePaths adds files to the set the model should see. They are read
// the next time files are observed.
func (c *Context) AddFilePaths(paths ...string) {
	addAll(c.filePaths, paths)
}

// FilePaths returns the files added so far, sorted.
func (c *Context) FilePaths() []string {
	return slices.Sorted(maps.Keys(c.filePaths))
}

// ObserveFilePaths adds files and observes any not yet seen.
func (c *Context) ObserveFilePaths(paths ...string) {
	c.AddFilePaths(paths...)
	c.observeFiles()
}

// ObservedFiles returns the files shown to the model and the content shown.
func (c *Context) ObservedFiles() map[string]string {
	return maps.Clone(c.observedFiles)
}

// AddPadIDs selects pads for the next prompt.
func (c *Context) AddPadIDs(ids ...string) {
	addAll(c.padIDs, ids)
}

// PadIDs returns every selected pad id, sorted.
func (c *Context) PadIDs() []string {
	return slices.Sorted(maps.Keys(c.padIDs))
}

// UsedPadIDs returns the ids of pads already rendered into a prompt, sorted.
func (c *Context) UsedPadIDs() []string {
	return slices.Sorted(maps.Keys(c.usedPadIDs))
}

// AvailableTools returns the tools the router may pick right now, keyed by
// name: those under their use limit whose availability check passes.
func (c *Context) AvailableTools() map[string]*Tool {
	out := make(map[string]*Tool, len(c.tools))
	for name, t := range c.tools {
		if c.uses[name] < t.MaxUses && t.Available() {
			out[name] = t
		}
	}
	return out
}

// Uses returns how many times the named tool has run in this context.
func (c *Context) Uses(name string) int { return c.uses[name] }

// emit suspends the turn with ev. Before the driver sees the event, every
// running tool's node is promoted to the end of its parent and tagged,
// innermost first, so the outermost tool ends up last. Events other than
// NodeAdded inherit the innermost running tool's id. Without a driver emit
// returns immediately.
func (c *Context) emit(ev event.Event) error {
	for i := len(c.running) - 1; i >= 0; i-- {
		r := c.running[i]
		r.node.PromoteToLast()
		r.node.SetTag(content.RenderTag{ToolID: r.tool.ID, Icon: r.tool.Icon, Render: r.tool.Render})
	}
	// A NodeAdded without a tool id is plain content, even inside a tool.
	if ev.ToolID.IsZero() && ev.Type != event.NodeAdded && len(c.running) > 0 {
		ev.ToolID = c.running[len(c.running)-1].tool.ID
	}
	if c.yield == nil {
		return nil
	}
	return c.yield(ev)
}

// AppendChunk folds chunk into node and reports it.
func (c *Context) AppendChunk(node *content.Node, chunk ai.Chunk) error {
	node.AppendChunk(chunk)
	return c.emit(event.Event{Type: event.ChunkAppended, NodeID: node.ID(), Chunk: &chunk})
}

// Update reports a change a tool made to node, such as new data.
func (c *Context) Update(node *content.Node) error {
	return c.emit(event.Event{Type: event.ToolProgress, NodeID: node.ID()})
}

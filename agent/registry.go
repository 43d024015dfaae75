package agent

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	ai "github.com/spetersoncode/steward"
)

// Registry holds the tools contexts can resolve by id. Registration is
// expected at startup but the registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[ai.ToolID]*Tool
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry that logs to logger, or to
// slog.Default when logger is nil.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[ai.ToolID]*Tool),
		logger: logger,
	}
}

// Register adds a tool. A tool already registered under the same id is
// replaced and a warning is logged.
func (r *Registry) Register(t *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.ID]; exists {
		r.logger.Warn("tool already registered, overwriting", "tool", t.ID.String())
	}
	r.tools[t.ID] = t
}

// Resolve returns the tool registered under id.
func (r *Registry) Resolve(id ai.ToolID) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[id]
	return t, ok
}

// Require resolves id, failing with ErrToolNotFound when it is not registered.
func (r *Registry) Require(id ai.ToolID) (*Tool, error) {
	t, ok := r.Resolve(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}
	return t, nil
}

// Tools returns every registered tool ordered by id.
func (r *Registry) Tools() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	slices.SortFunc(tools, func(a, b *Tool) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return tools
}

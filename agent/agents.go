package agent

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	ai "github.com/spetersoncode/steward"
)

// DefaultAgentName names the agent used when a turn does not mention one.
const DefaultAgentName = "default"

// Handler runs one full turn on a context.
type Handler func(ctx context.Context, ac *Context) error

// Agent is a named turn handler a user can select with an @mention.
type Agent struct {
	Name        string
	Description string
	Handler     Handler
	// Tools lists the tools the agent depends on. The agent is offered
	// only while all of them are registered and available.
	Tools []ai.ToolID
}

// Agents is a registry of agents.
type Agents struct {
	mu     sync.RWMutex
	agents map[string]*Agent
	tools  *Registry
	logger *slog.Logger
}

// NewAgents creates an agent registry that checks agent dependencies
// against tools.
func NewAgents(tools *Registry, logger *slog.Logger) *Agents {
	if logger == nil {
		logger = slog.Default()
	}
	if tools == nil {
		tools = NewRegistry(logger)
	}
	return &Agents{agents: make(map[string]*Agent), tools: tools, logger: logger}
}

// Register adds an agent, replacing any agent with the same name.
func (r *Agents) Register(name, description string, handler Handler, tools ...ai.ToolID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[name]; exists {
		r.logger.Info("registering agent, overriding the existing agent", "agent", name)
	}
	r.agents[name] = &Agent{Name: name, Description: description, Handler: handler, Tools: tools}
}

// Get returns the named agent.
func (r *Agents) Get(name string) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return a, nil
}

// Has reports whether name is registered.
func (r *Agents) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.agents[name]
	return ok
}

// Names returns the agents a user may mention: every supported agent
// except the default one, in sorted order.
func (r *Agents) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		if name != DefaultAgentName {
			names = append(names, name)
		}
	}
	r.mu.RUnlock()

	names = slices.DeleteFunc(names, func(n string) bool { return !r.Supported(n) })
	slices.Sort(names)
	return names
}

// Supported reports whether every tool the named agent depends on is
// registered and available.
func (r *Agents) Supported(name string) bool {
	r.mu.RLock()
	a, ok := r.agents[name]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	for _, id := range a.Tools {
		t, ok := r.tools.Resolve(id)
		if !ok || !t.Available() {
			return false
		}
	}
	return true
}

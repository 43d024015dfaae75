// Package app assembles a steward runtime from configuration: the model
// client, tool and agent registries, pads, the workspace and the session
// store. The CLI commands, the AG-UI server and the MCP server all drive
// turns through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
	"github.com/spetersoncode/steward/agents"
	"github.com/spetersoncode/steward/client"
	"github.com/spetersoncode/steward/event"
	"github.com/spetersoncode/steward/internal/config"
	"github.com/spetersoncode/steward/mcp"
	"github.com/spetersoncode/steward/pad"
	"github.com/spetersoncode/steward/store"
	"github.com/spetersoncode/steward/tool"
	"github.com/spetersoncode/steward/workspace"
)

// App is a configured steward runtime.
type App struct {
	Config    *config.Config
	Model     ai.LanguageModel
	Tools     *agent.Registry
	Agents    *agent.Agents
	Pads      pad.Store
	Workspace *workspace.Reader
	Sessions  *store.Sessions
	Logger    *slog.Logger

	closers []io.Closer
}

// Option configures an App.
type Option func(*options)

type options struct {
	model    ai.LanguageModel
	sessions store.Adapter
	watch    bool
}

// WithModel replaces the model client built from the configuration.
func WithModel(m ai.LanguageModel) Option {
	return func(o *options) { o.model = m }
}

// WithSessionAdapter replaces the session directory with adapter.
func WithSessionAdapter(a store.Adapter) Option {
	return func(o *options) { o.sessions = a }
}

// WithPadWatch reloads pads when files in the pads directory change.
func WithPadWatch() Option {
	return func(o *options) { o.watch = true }
}

// New builds the runtime. Remote MCP servers that fail to connect are
// logged and skipped.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config:    cfg,
		Model:     o.model,
		Workspace: workspace.NewReader(cfg.Workspace),
		Logger:    logger,
	}
	if a.Model == nil {
		a.Model = client.New(cfg.Client(logger))
	}

	pads, err := a.openPads(ctx, o.watch)
	if err != nil {
		return nil, err
	}
	a.Pads = pads

	adapter := o.sessions
	if adapter == nil {
		dir, err := store.NewDirAdapter(cfg.SessionsDir)
		if err != nil {
			a.Close()
			return nil, err
		}
		adapter = dir
	}
	a.Sessions = store.NewSessions(adapter)

	a.Tools = agent.NewRegistry(logger)
	builtins := []tool.Option{tool.WithCitationTitles(cfg.CitationTitles)}
	if key := cfg.APIKeys.Perplexity; key != "" {
		builtins = append(builtins, tool.WithWebSearch(tool.NewPerplexity(key)))
	}
	tool.RegisterBuiltins(a.Tools, builtins...)
	for _, srv := range cfg.MCPServers {
		remote, err := mcp.Connect(ctx, mcp.ServerConfig{
			Name:      srv.Name,
			Transport: srv.Transport,
			Command:   srv.Command,
			Args:      srv.Args,
			URL:       srv.URL,
			Env:       srv.Env,
		})
		if err != nil {
			logger.Warn("skipping MCP server", "server", srv.Name, "error", err)
			continue
		}
		remote.Register(a.Tools)
		a.closers = append(a.closers, remote)
		logger.Info("connected MCP server", "server", srv.Name, "tools", len(remote.Tools()))
	}

	a.Agents = agent.NewAgents(a.Tools, logger)
	agents.RegisterAll(a.Agents)
	return a, nil
}

func (a *App) openPads(ctx context.Context, watch bool) (pad.Store, error) {
	if _, err := os.Stat(a.Config.PadsDir); errors.Is(err, os.ErrNotExist) {
		a.Logger.Debug("no pads directory", "dir", a.Config.PadsDir)
		return pad.NewMemoryStore(), nil
	}
	dir, err := pad.OpenDir(a.Config.PadsDir, pad.WithLogger(a.Logger))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, dir)
	if watch {
		if err := dir.Watch(ctx); err != nil {
			a.Logger.Warn("pads will not reload", "error", err)
		}
	}
	return dir, nil
}

// Close releases remote sessions and file watchers.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Turn is a prepared turn of a conversation.
type Turn struct {
	Record  *store.Record
	Context *agent.Context
	Agent   *agent.Agent

	app *App
}

// Begin prepares a turn of the conversation sessionID, starting a new
// conversation when sessionID is empty or unknown.
func (a *App) Begin(ctx context.Context, sessionID, text string) (*Turn, error) {
	rec, err := a.Sessions.Open(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	ac, ag, err := agent.Turn{
		Model:     a.Model,
		Agents:    a.Agents,
		Workspace: a.Workspace,
		Session:   rec.Session,
		Options: []agent.Option{
			agent.WithRegistry(a.Tools),
			agent.WithPads(a.Pads),
			agent.WithLogger(a.Logger),
			agent.WithModels(a.Config.Slots),
			agent.WithBasePrompt(a.Config.BasePrompt),
		},
	}.Start(text)
	if err != nil {
		return nil, err
	}
	return &Turn{Record: rec, Context: ac, Agent: ag, app: a}, nil
}

// Run starts the turn. The caller drains the stream and then calls Finish.
func (t *Turn) Run(ctx context.Context) *event.Stream {
	return agent.RunAgent(ctx, t.Context, t.Agent)
}

// Reply is the text of everything the turn wrote.
func (t *Turn) Reply() string {
	return t.Context.Root().Text()
}

// Finish records the turn in the conversation and saves it.
func (t *Turn) Finish(ctx context.Context) error {
	t.Record.Session = t.Record.Session.Advance(t.Context, t.Reply())
	if err := t.app.Sessions.Save(ctx, t.Record); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Ask runs a whole turn and returns its reply and conversation id.
func (a *App) Ask(ctx context.Context, sessionID, text string) (string, string, error) {
	turn, err := a.Begin(ctx, sessionID, text)
	if err != nil {
		return "", "", err
	}
	stream := turn.Run(ctx)
	defer stream.Close()
	for range stream.All() {
	}
	if err := stream.Err(); err != nil {
		return "", turn.Record.ID, err
	}
	if err := turn.Finish(ctx); err != nil {
		return "", turn.Record.ID, err
	}
	return turn.Reply(), turn.Record.ID, nil
}

// Command steward runs coding-assistant agents over a workspace.
//
// # Basic Usage
//
// Ask a question about the workspace:
//
//	steward chat "where is the router prompt built?"
//
// Serve the AG-UI and MCP endpoints:
//
//	steward serve --listen :8000
//
// Expose the agents to an MCP client over stdio:
//
//	steward mcp
//
// # Environment Variables
//
//   - STEWARD_CONFIG: Path to the configuration file (default: steward.yaml)
//   - STEWARD_WORKSPACE: Directory the agents read and edit
//   - STEWARD_MODEL_CORE, STEWARD_MODEL_EDITOR, ...: Model per slot
//   - ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY, PERPLEXITY_API_KEY
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/steward/internal/app"
	"github.com/spetersoncode/steward/internal/config"
)

// Build information, set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := buildRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
}

func buildRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "steward",
		Short: "Steward - agents for your codebase",
		Long: `Steward answers questions about a workspace and edits it, routing each
request through pads of project context and a small set of tools.

Agents are selected with an @mention at the start of a message:
  @reasoner  think hard before answering
  @search    search the web
  @vanilla   talk to the model without tools`,
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Path to YAML configuration file (default: steward.yaml or $STEWARD_CONFIG)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides the configuration)")

	root.AddCommand(
		buildChatCmd(g),
		buildServeCmd(g),
		buildMCPCmd(g),
		buildAgentsCmd(g),
		buildModelsCmd(g),
		buildPadsCmd(g),
		buildSessionsCmd(g),
	)
	return root
}

// load reads the configuration and installs a logger writing to w.
func (g *globals) load(w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// open loads the configuration and assembles the runtime. Logs go to stderr
// so that stdout stays free for replies and for the MCP stdio transport.
func (g *globals) open(ctx context.Context, opts ...app.Option) (*app.App, error) {
	cfg, logger, err := g.load(os.Stderr)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, logger, opts...)
}

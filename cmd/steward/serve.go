package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/spetersoncode/steward/agui"
	"github.com/spetersoncode/steward/internal/app"
	"github.com/spetersoncode/steward/mcp"
)

const shutdownTimeout = 30 * time.Second

func buildServeCmd(g *globals) *cobra.Command {
	var (
		listen string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agents over AG-UI and MCP",
		Long: `Serve the agents over HTTP:

  POST /api/agent  AG-UI run, streamed as Server-Sent Events
  /mcp             MCP streamable HTTP transport
  GET  /health     health check

Graceful shutdown is handled on SIGINT/SIGTERM signals.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []app.Option
			if watch {
				opts = append(opts, app.WithPadWatch())
			}
			a, err := g.open(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			defer a.Close()
			if listen != "" {
				a.Config.Listen = listen
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (overrides the configuration)")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload pads when their files change")
	return cmd
}

func runServe(ctx context.Context, a *app.App) error {
	srv := &http.Server{
		Addr:        a.Config.Listen,
		Handler:     newMux(a),
		ReadTimeout: 10 * time.Second,
		// SSE needs no write timeout
		IdleTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server starting", "addr", srv.Addr, "workspace", a.Config.Workspace)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.Logger.Info("server stopped")
	return nil
}

func newMux(a *app.App) *http.ServeMux {
	begin := func(ctx context.Context, threadID, text string) (agui.Turn, error) {
		turn, err := a.Begin(ctx, threadID, text)
		if err != nil {
			return nil, err
		}
		return turn, nil
	}
	mcpServer := mcp.NewServer(a.Agents, a.Ask, mcp.WithVersion(version))

	mux := http.NewServeMux()
	mux.Handle("/api/agent", corsMiddleware(agui.NewHandler(begin, a.Logger)))
	mux.Handle("/mcp", mcp.HTTPHandler(mcpServer))
	mux.HandleFunc("/health", healthHandler)
	return mux
}

func buildMCPCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the agents to an MCP client over stdio",
		Long: `Serve the agents to an MCP client over stdio. Each agent is a tool named
steward_<agent> taking an input and an optional session_id.

Example client configuration:

  {"mcpServers": {"steward": {"command": "steward", "args": ["mcp"]}}}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			s := mcp.NewServer(a.Agents, a.Ask, mcp.WithVersion(version))
			return server.NewStdioServer(s).Listen(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// corsMiddleware adds CORS headers for cross-origin frontend requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

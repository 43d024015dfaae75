package mcp

import (
	"context"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spetersoncode/steward/agent"
)

// ToolPrefix is prepended to agent names to form MCP tool names.
const ToolPrefix = "steward_"

// AskFunc runs one turn on the conversation sessionID, starting a new one
// when sessionID is empty, and returns the reply and the conversation id.
type AskFunc func(ctx context.Context, sessionID, text string) (reply, nextSessionID string, err error)

// AskResult is the structured result of an agent tool call.
type AskResult struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// NewServer creates an MCP server with one tool per supported agent. Each
// tool takes the request text and an optional session id to continue a
// conversation.
func NewServer(agents *agent.Agents, ask AskFunc, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "steward",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	names := append([]string{agent.DefaultAgentName}, agents.Names()...)
	for _, name := range names {
		a, err := agents.Get(name)
		if err != nil {
			continue
		}
		s.AddTool(agentTool(a), agentHandler(name, ask))
	}
	return s
}

func agentTool(a *agent.Agent) mcp.Tool {
	description := a.Description
	if description == "" {
		description = "Ask the " + a.Name + " agent"
	}
	return mcp.NewTool(ToolPrefix+a.Name,
		mcp.WithDescription(description),
		mcp.WithString("input", mcp.Required(), mcp.Description("The request for the agent, as a user would type it")),
		mcp.WithString("session_id", mcp.Description("Continue the conversation with this id; omit to start a new one")),
	)
}

func agentHandler(name string, ask AskFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, err := req.RequireString("input")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if name != agent.DefaultAgentName {
			input = "@" + name + " " + input
		}

		reply, sessionID, err := ask(ctx, req.GetString("session_id", ""), input)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("agent turn failed", err), nil
		}
		return mcp.NewToolResultStructured(AskResult{SessionID: sessionID, Reply: reply}, reply), nil
	}
}

// HTTPHandler serves s over the streamable HTTP transport.
func HTTPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}

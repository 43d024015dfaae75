package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
	"github.com/spetersoncode/steward/content"
)

// Transports a remote server can be reached over.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
	TransportSSE   = "sse"
)

// ServerConfig describes a remote MCP server.
type ServerConfig struct {
	Name      string
	Transport string
	Command   string
	Args      []string
	URL       string
	Env       map[string]string
}

// Remote is an initialized session with a remote MCP server.
//
// Remote is safe for concurrent use. The tool list is cached locally and
// can be refreshed with Refresh.
type Remote struct {
	name   string
	client *client.Client
	mu     sync.RWMutex
	tools  []mcp.Tool
}

// Connect starts a session with the server described by cfg and fetches
// its tools.
func Connect(ctx context.Context, cfg ServerConfig) (*Remote, error) {
	var (
		c   *client.Client
		err error
	)
	switch cfg.Transport {
	case TransportStdio, "":
		env := make([]string, 0, len(cfg.Env))
		for _, k := range slices.Sorted(maps.Keys(cfg.Env)) {
			env = append(env, k+"="+cfg.Env[k])
		}
		c, err = client.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
	case TransportHTTP:
		c, err = client.NewStreamableHttpClient(cfg.URL)
	case TransportSSE:
		c, err = client.NewSSEMCPClient(cfg.URL)
	default:
		return nil, fmt.Errorf("mcp: server %s: unknown transport %q", cfg.Name, cfg.Transport)
	}
	if err != nil {
		return nil, fmt.Errorf("mcp: server %s: create client: %w", cfg.Name, err)
	}
	return NewRemote(ctx, cfg.Name, c)
}

// NewRemote initializes a session over an existing client.
func NewRemote(ctx context.Context, name string, c *client.Client) (*Remote, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcp: server %s: start: %w", name, err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "steward",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: server %s: initialize: %w", name, err)
	}

	r := &Remote{name: name, client: c}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("mcp: server %s: list tools: %w", name, err)
	}
	return r, nil
}

// Name returns the server's configured name.
func (r *Remote) Name() string { return r.name }

// Close ends the session.
func (r *Remote) Close() error {
	return r.client.Close()
}

// Refresh fetches the current list of tools from the server.
func (r *Remote) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = result.Tools
	return nil
}

// Tools converts the server's tools into agent tools. Each tool's package
// is "mcp/<server>" and its name is "<server>_<tool>", so tools of
// different servers never collide in the router prompt.
func (r *Remote) Tools() []*agent.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*agent.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, r.agentTool(t))
	}
	return out
}

// Register adds every tool of the server to reg.
func (r *Remote) Register(reg *agent.Registry) {
	for _, t := range r.Tools() {
		reg.Register(t)
	}
}

func (r *Remote) agentTool(t mcp.Tool) *agent.Tool {
	params := schemaParams(t)
	opts := []agent.ToolOption{
		agent.WithDescription(fmt.Sprintf("Using %s on %s", t.Name, r.name)),
		agent.WithIcon("extension"),
		agent.WithInstructions(t.Description),
	}
	for _, p := range params {
		opts = append(opts, agent.WithParam(p.Name, p.Type))
	}

	remoteName := t.Name
	return agent.NewTool("mcp/"+r.name, r.name+"_"+t.Name,
		func(ctx context.Context, ac *agent.Context, out *content.Node, args agent.Args) (any, error) {
			return r.call(ctx, ac, out, remoteName, coerceArgs(args, params))
		}, opts...)
}

func (r *Remote) call(ctx context.Context, ac *agent.Context, out *content.Node, name string, args map[string]any) (any, error) {
	result, err := r.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		ac.Logger().Warn("remote tool call failed", "server", r.name, "tool", name, "error", err)
		return nil, ac.AppendChunk(out, ai.ErrorChunk(err.Error()))
	}

	text := resultText(result)
	if result.IsError {
		return nil, ac.AppendChunk(out, ai.ErrorChunk(text))
	}
	if err := ac.AppendChunk(out, ai.TextChunk(text)); err != nil {
		return nil, err
	}
	return text, nil
}

func resultText(result *mcp.CallToolResult) string {
	parts := make([]string, 0, len(result.Content))
	for _, c := range result.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			parts = append(parts, tc.Text)
		}
	}
	if len(parts) == 0 && result.StructuredContent != nil {
		if data, err := json.Marshal(result.StructuredContent); err == nil {
			return string(data)
		}
	}
	return strings.Join(parts, "\n")
}

// schemaParams lists a tool's parameters, required ones first, each group
// sorted by name.
func schemaParams(t mcp.Tool) []agent.Param {
	schema := t.InputSchema
	if len(t.RawInputSchema) > 0 {
		var raw mcp.ToolInputSchema
		if err := json.Unmarshal(t.RawInputSchema, &raw); err == nil {
			schema = raw
		}
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	names := slices.SortedFunc(maps.Keys(schema.Properties), func(a, b string) int {
		if required[a] != required[b] {
			if required[a] {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})

	params := make([]agent.Param, 0, len(names))
	for _, name := range names {
		typ := "string"
		if prop, ok := schema.Properties[name].(map[string]any); ok {
			if s, ok := prop["type"].(string); ok {
				typ = s
			}
		}
		params = append(params, agent.Param{Name: name, Type: typ})
	}
	return params
}

var errNoConversion = errors.New("no conversion")

// coerceArgs converts router arguments, which arrive as text, to the types
// the tool's schema declares. Values that do not convert are passed through.
func coerceArgs(args agent.Args, params []agent.Param) map[string]any {
	types := make(map[string]string, len(params))
	for _, p := range params {
		types[p.Name] = p.Type
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		s, ok := v.(string)
		if !ok {
			out[k] = v
			continue
		}
		if converted, err := convert(s, types[k]); err == nil {
			out[k] = converted
		} else {
			out[k] = s
		}
	}
	return out
}

func convert(s, typ string) (any, error) {
	s = strings.TrimSpace(s)
	switch typ {
	case "integer":
		return strconv.ParseInt(s, 10, 64)
	case "number":
		return strconv.ParseFloat(s, 64)
	case "boolean":
		return strconv.ParseBool(s)
	case "array", "object":
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, errNoConversion
}

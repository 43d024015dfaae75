// Package mcp connects steward to the Model Context Protocol in both
// directions.
//
// NewServer exposes the registered agents as MCP tools, so an MCP client
// such as a desktop assistant can hand a request to an agent and read its
// reply:
//
//	s := mcp.NewServer(agents, app.Ask, mcp.WithName("steward"))
//	err := server.ServeStdio(s)
//
// Connect goes the other way: it opens a session with a remote MCP server
// and registers the server's tools with an agent.Registry, where the
// router can pick them like any built-in tool:
//
//	remote, err := mcp.Connect(ctx, mcp.ServerConfig{Name: "files", Command: "mcp-files"})
//	if err != nil {
//	    return err
//	}
//	defer remote.Close()
//	remote.Register(tools)
package mcp

// Package tool provides the built-in tools: codebase search and editing,
// web search through Perplexity, a general expert and a URL fetcher.
//
// Register them all with RegisterBuiltins:
//
//	reg := agent.NewRegistry(logger)
//	tool.RegisterBuiltins(reg, tool.WithWebSearch(tool.NewPerplexity(key)))
package tool

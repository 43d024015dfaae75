// Package steward holds the vocabulary shared by the agent runtime: model
// chunks and requests, the LanguageModel interface, tool identities and the
// Step union produced by a routing decision.
//
// The runtime itself lives in subpackages:
//
//   - [github.com/spetersoncode/steward/agent]: the per-turn agent context,
//     step loop, tool dispatch and registries
//   - [github.com/spetersoncode/steward/content]: the output tree
//   - [github.com/spetersoncode/steward/event]: the suspension protocol a
//     driver pulls progress events from
//   - [github.com/spetersoncode/steward/router]: the router prompt and reply parser
//   - [github.com/spetersoncode/steward/client]: a LanguageModel backed by
//     Anthropic, OpenAI and Google
//
// # Basic Usage
//
//	c := client.New(client.Config{AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY")})
//	reg := agent.NewRegistry(nil)
//	tool.RegisterBuiltins(reg)
//
//	ac := agent.New(c, "Explain main.go",
//	    agent.WithRegistry(reg),
//	    agent.WithWorkspace(workspace.NewReader(".")),
//	)
//	stream := agent.Run(ctx, ac, agents.Vanilla)
//	defer stream.Close()
//	for ev := range stream.All() {
//	    render(ac.Root(), ev)
//	}
//	if err := stream.Err(); err != nil {
//	    log.Fatal(err)
//	}
package steward

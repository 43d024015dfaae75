// Package client provides a single steward.LanguageModel over every
// supported provider.
//
// Requests name their model with a full id, origin::provider::name. The
// client picks the provider from the id, creates its adapter on first use,
// strips the id down to the provider's model name and retries transient
// failures to open the stream:
//
//	c := client.New(client.Config{
//	    APIKeys: client.APIKeys{
//	        Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
//	        OpenAI:    os.Getenv("OPENAI_API_KEY"),
//	    },
//	})
//
//	ch, err := c.StreamChunks(ctx, steward.Request{
//	    ModelID: "builtin::anthropic::claude-sonnet-4-5",
//	    Input:   "Hello!",
//	})
//
// Custom ids address OpenAI-compatible servers listed in Config.Endpoints:
//
//	custom::local::qwen2.5-coder
package client

// Package anthropic adapts the Anthropic Messages API to steward.LanguageModel.
package anthropic

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/internal/provider"
)

// DefaultModel is used when a request carries no model name.
const DefaultModel = "claude-sonnet-4-5"

const defaultMaxTokens = 8192

// Client streams Claude completions.
type Client struct {
	client    anthropic.Client
	maxTokens int64
	noCache   bool
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL   string
	maxTokens int64
	noCache   bool
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithMaxTokens caps the reply length. Anthropic requires a cap on every call.
func WithMaxTokens(n int) ClientOption {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxTokens = int64(n)
		}
	}
}

// WithoutPromptCache disables the ephemeral cache breakpoints placed on the
// system prompt and the two most recent user turns.
func WithoutPromptCache() ClientOption {
	return func(c *clientConfig) { c.noCache = true }
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := clientConfig{maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&cfg)
	}
	// Retries are handled by the caller's retry layer.
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &Client{client: anthropic.NewClient(reqOpts...), maxTokens: cfg.maxTokens, noCache: cfg.noCache}
}

func (c *Client) params(req ai.Request) anthropic.MessageNewParams {
	model := req.ModelID
	if model == "" {
		model = DefaultModel
	}
	msgs := convertMessages(req.Messages())
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: c.maxTokens,
		Messages:  msgs,
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if !c.noCache {
		markCache(params.System, msgs)
	}
	if req.OutputSchema != nil {
		tool, choice := jsonTool(req.OutputSchema)
		params.Tools = []anthropic.ToolUnionParam{tool}
		params.ToolChoice = choice
	}
	return params
}

// StreamChunks opens a streaming call. The first event is read before
// returning so that connection and API failures surface as errors.
func (c *Client) StreamChunks(ctx context.Context, req ai.Request) (<-chan ai.Chunk, error) {
	stream := c.client.Messages.NewStreaming(ctx, c.params(req))
	ok := stream.Next()
	if !ok {
		if err := stream.Err(); err != nil {
			stream.Close()
			return nil, wrapError(err)
		}
	}

	ch := make(chan ai.Chunk)
	go func() {
		defer close(ch)
		defer stream.Close()

		var md ai.CompletionMetadata
		for ; ok; ok = stream.Next() {
			event := stream.Current()
			switch event.Type {
			case "message_start":
				usage := event.AsMessageStart().Message.Usage
				md.InputTokens = int(usage.InputTokens + usage.CacheCreationInputTokens)
				md.CachedInputTokens = int(usage.CacheReadInputTokens)
				md.OutputTokens = int(usage.OutputTokens)
			case "content_block_delta":
				if text := deltaText(event.AsContentBlockDelta()); text != "" {
					if !provider.Send(ctx, ch, ai.TextChunk(text)) {
						return
					}
				}
			case "message_delta":
				delta := event.AsMessageDelta()
				md.FinishReason = ai.NormalizeFinishReason(string(delta.Delta.StopReason))
				md.OutputTokens = int(delta.Usage.OutputTokens)
			}
		}
		if err := stream.Err(); err != nil {
			provider.Send(ctx, ch, ai.ErrorChunk(wrapError(err).Error()))
			return
		}
		if md.FinishReason == "" {
			md.FinishReason = ai.FinishUnknown
		}
		provider.Send(ctx, ch, ai.MetadataChunk(md))
	}()
	return ch, nil
}

// deltaText returns the streamed text of a delta. Structured replies arrive
// as the partial input of the forced JSON tool and are streamed as text.
func deltaText(event anthropic.ContentBlockDeltaEvent) string {
	switch event.Delta.Type {
	case "text_delta":
		return event.Delta.AsTextDelta().Text
	case "input_json_delta":
		return event.Delta.AsInputJSONDelta().PartialJSON
	}
	return ""
}

var _ ai.LanguageModel = (*Client)(nil)

// Package openai adapts the OpenAI Chat Completions API, and compatible
// endpoints, to steward.LanguageModel.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/internal/provider"
)

// DefaultModel is used when a request carries no model name.
const DefaultModel = "gpt-4.1"

// Client streams chat completions.
type Client struct {
	client       openai.Client
	defaultModel string
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL      string
	defaultModel string
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *clientConfig) { c.baseURL = url }
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) ClientOption {
	return func(c *clientConfig) { c.defaultModel = model }
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...ClientOption) *Client {
	cfg := clientConfig{defaultModel: DefaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	return &Client{client: openai.NewClient(reqOpts...), defaultModel: cfg.defaultModel}
}

func (c *Client) params(req ai.Request) openai.ChatCompletionNewParams {
	model := req.ModelID
	if model == "" {
		model = c.defaultModel
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: convertMessages(req.SystemPrompt, req.Messages()),
		StreamOptions: openai.ChatCompletionStreamOptionsParam{
			IncludeUsage: openai.Bool(true),
		},
	}
	if req.OutputSchema != nil {
		params.ResponseFormat = schemaFormat(req.OutputSchema)
	}
	return params
}

// StreamChunks opens a streaming completion. The first chunk is read
// before returning so that API failures surface as categorized errors.
func (c *Client) StreamChunks(ctx context.Context, req ai.Request) (<-chan ai.Chunk, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(req))
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
		var finish string
		for ; ok; ok = stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) > 0 {
				choice := chunk.Choices[0]
				if choice.FinishReason != "" {
					finish = choice.FinishReason
				}
				if choice.Delta.Content != "" && !provider.Send(ctx, ch, ai.TextChunk(choice.Delta.Content)) {
					return
				}
			}
			if chunk.Usage.PromptTokens > 0 || chunk.Usage.CompletionTokens > 0 {
				md.InputTokens = int(chunk.Usage.PromptTokens)
				md.CachedInputTokens = int(chunk.Usage.PromptTokensDetails.CachedTokens)
				md.OutputTokens = int(chunk.Usage.CompletionTokens)
			}
		}
		if err := stream.Err(); err != nil {
			provider.Send(ctx, ch, ai.ErrorChunk(wrapError(err).Error()))
			return
		}
		md.FinishReason = ai.NormalizeFinishReason(finish)
		provider.Send(ctx, ch, ai.MetadataChunk(md))
	}()
	return ch, nil
}

func convertMessages(system string, messages []ai.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		switch msg.Role {
		case ai.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		case ai.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

// wrapError categorizes OpenAI API errors by status. Network failures are
// returned unchanged for the retry heuristics.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	return provider.Categorize(err, apiErr.StatusCode, provider.RetryAfter(apiErr.Response))
}

var _ ai.LanguageModel = (*Client)(nil)

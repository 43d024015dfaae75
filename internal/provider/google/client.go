// Package google adapts the Gemini API to steward.LanguageModel.
package google

import (
	"context"
	"errors"
	"iter"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/internal/provider"
	"google.golang.org/genai"
)

// DefaultModel is used when a request carries no model name.
const DefaultModel = "gemini-2.5-flash"

// Client streams Gemini completions.
type Client struct {
	client *genai.Client
}

// ClientOption configures a Client.
type ClientOption func(*genai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *genai.ClientConfig) { c.HTTPOptions.BaseURL = url }
}

// New creates a client for the Gemini API authenticated with apiKey.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

func generateConfig(req ai.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	if req.OutputSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = convertSchema(req.OutputSchema.Schema)
	}
	return cfg
}

// StreamChunks opens a streaming generation. The first response is pulled
// before returning so that API failures surface as categorized errors.
func (c *Client) StreamChunks(ctx context.Context, req ai.Request) (<-chan ai.Chunk, error) {
	model := req.ModelID
	if model == "" {
		model = DefaultModel
	}
	seq := c.client.Models.GenerateContentStream(ctx, model, convertMessages(req.Messages()), generateConfig(req))
	next, stop := iter.Pull2(seq)

	first, err, ok := next()
	if ok && err != nil {
		stop()
		return nil, wrapError(err)
	}

	ch := make(chan ai.Chunk)
	go func() {
		defer close(ch)
		defer stop()

		var md ai.CompletionMetadata
		var finish string
		for resp := first; ok; resp, err, ok = next() {
			if err != nil {
				provider.Send(ctx, ch, ai.ErrorChunk(wrapError(err).Error()))
				return
			}
			if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
				blocked := &BlockedError{Reason: string(resp.PromptFeedback.BlockReason)}
				provider.Send(ctx, ch, ai.ErrorChunk(blocked.Error()))
				return
			}
			if len(resp.Candidates) > 0 {
				cand := resp.Candidates[0]
				if cand.Content != nil {
					for _, part := range cand.Content.Parts {
						if part.Text == "" || part.Thought {
							continue
						}
						if !provider.Send(ctx, ch, ai.TextChunk(part.Text)) {
							return
						}
					}
				}
				if cand.FinishReason != "" {
					finish = string(cand.FinishReason)
				}
			}
			if u := resp.UsageMetadata; u != nil {
				md.InputTokens = int(u.PromptTokenCount)
				md.CachedInputTokens = int(u.CachedContentTokenCount)
				md.OutputTokens = int(u.CandidatesTokenCount)
			}
		}
		md.FinishReason = ai.NormalizeFinishReason(finish)
		provider.Send(ctx, ch, ai.MetadataChunk(md))
	}()
	return ch, nil
}

// BlockedError reports a prompt rejected by safety filtering.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return "request blocked: " + e.Reason
}

func convertMessages(messages []ai.Message) []*genai.Content {
	var out []*genai.Content
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		var role genai.Role = genai.RoleUser
		if msg.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromText(msg.Content, role))
	}
	return out
}

// wrapError categorizes Gemini API errors by status. The API does not
// expose Retry-After.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	return provider.Categorize(err, apiErr.Code, 0)
}

var _ ai.LanguageModel = (*Client)(nil)

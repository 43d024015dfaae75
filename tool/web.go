package tool

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
	"github.com/spetersoncode/steward/content"
)

var errWebSearchDisabled = errors.New("tool: web search is not configured")

// WebSearcher streams a web-grounded answer. fn receives each text delta
// with the citations known so far; a non-nil error from fn stops the search.
type WebSearcher interface {
	Search(ctx context.Context, query string, fn func(delta string, citations []string) error) error
}

// Citation is a source backing a web answer.
type Citation struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Domain string `json:"domain"`
}

// WebContent is the data web_search keeps on its node.
type WebContent struct {
	Content   string     `json:"content"`
	Citations []Citation `json:"citations"`
}

// String returns the answer text.
func (w WebContent) String() string { return w.Content }

// NewWebSearch creates the web_search tool. The tool is unavailable while
// s is nil. When titles is non-nil, cited pages are fetched for their titles.
func NewWebSearch(s WebSearcher, titles *Fetcher) *agent.Tool {
	return agent.NewTool(Package, WebSearch.Name,
		func(ctx context.Context, ac *agent.Context, out *content.Node, args agent.Args) (any, error) {
			if s == nil {
				return nil, errWebSearchDisabled
			}
			query := args.String("query")
			ac.Observe("Searching the web for information using the query: "+query, nil)

			var acc strings.Builder
			seen := make(map[string]bool)
			var citations []Citation
			err := s.Search(ctx, query, func(delta string, cites []string) error {
				acc.WriteString(delta)
				for _, u := range cites {
					if seen[u] {
						continue
					}
					seen[u] = true
					citations = append(citations, citationFor(ctx, titles, u))
				}
				out.SetData(WebContent{Content: acc.String(), Citations: citations})
				if delta == "" {
					return ac.Update(out)
				}
				return ac.AppendChunk(out, ai.TextChunk(delta))
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				ac.Logger().Warn("web search failed", "query", query, "error", err)
				return nil, ac.AppendChunk(out, ai.ErrorChunk("Error searching the web: "+err.Error()))
			}
			ac.Observe("Search results: "+acc.String(), nil)
			return nil, nil
		},
		agent.WithDescription("Searching the web"),
		agent.WithIcon("web"),
		agent.WithParam("query", "string"),
		agent.WithInstructions("Search the web for information. *ONLY* use this tool if you need up-to-date information."),
		agent.WithAvailability(func() bool { return s != nil }),
	)
}

func citationFor(ctx context.Context, titles *Fetcher, rawURL string) Citation {
	c := Citation{URL: rawURL, Domain: domainOf(rawURL)}
	if titles != nil {
		c.Title = titles.Title(ctx, rawURL)
	} else {
		c.Title = c.Domain
	}
	return c
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// Perplexity defaults.
const (
	PerplexityBaseURL = "https://api.perplexity.ai"
	PerplexityModel   = "sonar"
)

// Perplexity is a WebSearcher backed by Perplexity's OpenAI-compatible
// chat completions API.
type Perplexity struct {
	client openai.Client
	model  string
}

// PerplexityOption configures a Perplexity searcher.
type PerplexityOption func(*perplexityConfig)

type perplexityConfig struct {
	baseURL string
	model   string
}

// WithPerplexityBaseURL overrides the API base URL.
func WithPerplexityBaseURL(u string) PerplexityOption {
	return func(c *perplexityConfig) { c.baseURL = u }
}

// WithPerplexityModel overrides the search model.
func WithPerplexityModel(m string) PerplexityOption {
	return func(c *perplexityConfig) { c.model = m }
}

// NewPerplexity creates a Perplexity searcher.
func NewPerplexity(apiKey string, opts ...PerplexityOption) *Perplexity {
	cfg := perplexityConfig{baseURL: PerplexityBaseURL, model: PerplexityModel}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Perplexity{
		client: openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(cfg.baseURL)),
		model:  cfg.model,
	}
}

// Search implements WebSearcher. Citations are not part of the OpenAI
// chunk schema, so they are read from each chunk's raw JSON.
func (p *Perplexity) Search(ctx context.Context, query string, fn func(delta string, citations []string) error) error {
	stream := p.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(query)},
	})
	defer stream.Close()

	for stream.Next() {
		chunk := stream.Current()
		var delta string
		if len(chunk.Choices) > 0 {
			delta = chunk.Choices[0].Delta.Content
		}
		var citations []string
		for _, c := range gjson.Get(chunk.RawJSON(), "citations").Array() {
			citations = append(citations, c.String())
		}
		if err := fn(delta, citations); err != nil {
			return err
		}
	}
	return stream.Err()
}

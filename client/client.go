package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/internal/provider/anthropic"
	"github.com/spetersoncode/steward/internal/provider/google"
	"github.com/spetersoncode/steward/internal/provider/openai"
	"github.com/spetersoncode/steward/internal/retry"
)

// PerplexityBaseURL is the OpenAI-compatible endpoint used for perplexity models.
const PerplexityBaseURL = "https://api.perplexity.ai"

// APIKeys holds credentials for the builtin providers.
// Only configure keys for providers you intend to use.
type APIKeys struct {
	Anthropic  string
	OpenAI     string
	Google     string
	Perplexity string
}

// Endpoint is an OpenAI-compatible server addressed by custom model ids,
// custom::<name>::<model>.
type Endpoint struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Config holds configuration for creating a unified client.
type Config struct {
	APIKeys APIKeys

	// Endpoints maps custom provider names to their servers.
	Endpoints map[string]Endpoint

	// Retry configures retries of stream establishment.
	// If nil, retry.DefaultConfig is used.
	Retry *retry.Config

	Logger *slog.Logger
}

// ErrMissingAPIKey is returned when a model is used but no API key
// is configured for that model's provider.
type ErrMissingAPIKey struct {
	Provider string
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ErrUnknownProvider is returned for model ids naming a provider the
// client cannot serve.
type ErrUnknownProvider struct {
	Provider string
	Custom   bool
}

func (e *ErrUnknownProvider) Error() string {
	if e.Custom {
		return fmt.Sprintf("no endpoint configured for custom provider %q", e.Provider)
	}
	return fmt.Sprintf("unsupported provider: %s", e.Provider)
}

// Option configures a Client.
type Option func(*Client)

// WithModel serves every model of provider p from m, bypassing the builtin
// adapter and its API key.
func WithModel(p ai.Provider, m ai.LanguageModel) Option {
	return func(c *Client) {
		c.models[providerKey{provider: p}] = m
	}
}

type providerKey struct {
	provider ai.Provider
	custom   bool
}

// Client is a steward.LanguageModel that routes each request to a provider
// by its model id. Provider adapters are created lazily on first use.
type Client struct {
	keys      APIKeys
	endpoints map[string]Endpoint
	retrier   *retry.Retrier
	logger    *slog.Logger

	mu     sync.Mutex
	models map[providerKey]ai.LanguageModel
}

// New creates a unified client with the given configuration.
func New(cfg Config, opts ...Option) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retryConfig := retry.DefaultConfig()
	if cfg.Retry != nil {
		retryConfig = *cfg.Retry
	}
	c := &Client{
		keys:      cfg.APIKeys,
		endpoints: cfg.Endpoints,
		retrier:   retry.New(retryConfig, logger),
		logger:    logger,
		models:    make(map[providerKey]ai.LanguageModel),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StreamChunks parses req.ModelID, forwards the request with the bare model
// name to the provider, and retries transient failures to open the stream.
func (c *Client) StreamChunks(ctx context.Context, req ai.Request) (<-chan ai.Chunk, error) {
	id, err := ai.ParseModelID(req.ModelID)
	if err != nil {
		return nil, ai.NewUserInputError(err.Error(), 0, err)
	}
	model, err := c.model(ctx, id)
	if err != nil {
		return nil, err
	}
	req.ModelID = id.Name

	start := time.Now()
	ch, err := c.retrier.Stream(model).StreamChunks(ctx, req)
	if err != nil {
		c.logger.Warn("model stream failed to open", "model", id.String(), "error", err)
		return nil, err
	}
	c.logger.Debug("model stream opened", "model", id.String(), "latency", time.Since(start))
	return ch, nil
}

func (c *Client) model(ctx context.Context, id ai.ModelID) (ai.LanguageModel, error) {
	key := providerKey{provider: id.Provider, custom: id.Custom}
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.models[key]; ok {
		return m, nil
	}
	m, err := c.newModel(ctx, id)
	if err != nil {
		return nil, err
	}
	c.models[key] = m
	return m, nil
}

func (c *Client) newModel(ctx context.Context, id ai.ModelID) (ai.LanguageModel, error) {
	if id.Custom {
		ep, ok := c.endpoints[string(id.Provider)]
		if !ok || ep.BaseURL == "" {
			return nil, &ErrUnknownProvider{Provider: string(id.Provider), Custom: true}
		}
		return openai.New(ep.APIKey, openai.WithBaseURL(ep.BaseURL)), nil
	}

	missing := &ErrMissingAPIKey{Provider: string(id.Provider), Model: id.String()}
	switch id.Provider {
	case ai.ProviderAnthropic:
		if c.keys.Anthropic == "" {
			return nil, missing
		}
		return anthropic.New(c.keys.Anthropic), nil
	case ai.ProviderOpenAI:
		if c.keys.OpenAI == "" {
			return nil, missing
		}
		return openai.New(c.keys.OpenAI), nil
	case ai.ProviderPerplexity:
		if c.keys.Perplexity == "" {
			return nil, missing
		}
		return openai.New(c.keys.Perplexity, openai.WithBaseURL(PerplexityBaseURL)), nil
	case ai.ProviderGoogle:
		if c.keys.Google == "" {
			return nil, missing
		}
		m, err := google.New(ctx, c.keys.Google)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google client: %w", err)
		}
		return m, nil
	default:
		return nil, &ErrUnknownProvider{Provider: string(id.Provider)}
	}
}

// Configured reports whether models of provider p can be served.
func (c *Client) Configured(p ai.Provider) bool {
	c.mu.Lock()
	_, injected := c.models[providerKey{provider: p}]
	c.mu.Unlock()
	if injected {
		return true
	}
	switch p {
	case ai.ProviderAnthropic:
		return c.keys.Anthropic != ""
	case ai.ProviderOpenAI:
		return c.keys.OpenAI != ""
	case ai.ProviderGoogle:
		return c.keys.Google != ""
	case ai.ProviderPerplexity:
		return c.keys.Perplexity != ""
	}
	return false
}

var _ ai.LanguageModel = (*Client)(nil)

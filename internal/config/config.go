// Package config loads steward's settings from a .env file, an optional
// YAML file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/client"
	"github.com/spetersoncode/steward/internal/retry"
	"github.com/spetersoncode/steward/model"
)

// DefaultFile is the settings file looked up in the working directory
// when no path is given.
const DefaultFile = "steward.yaml"

// MCPServer is a remote MCP server whose tools are offered to agents.
type MCPServer struct {
	Name string `yaml:"name"`
	// Transport is "stdio" or "http". Inferred from Command and URL when empty.
	Transport string            `yaml:"transport"`
	Command   string            `yaml:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty"`
	URL       string            `yaml:"url,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
}

// Config holds the resolved settings.
type Config struct {
	// Models maps slot names (core, editor, reasoner, router) to model ids.
	// Slots left empty get the catalog's pick for the configured providers.
	Models map[string]string `yaml:"models"`

	Workspace   string `yaml:"workspace"`
	PadsDir     string `yaml:"pads_dir"`
	SessionsDir string `yaml:"sessions_dir"`
	Listen      string `yaml:"listen"`
	LogLevel    string `yaml:"log_level"`
	BasePrompt  string `yaml:"base_prompt"`

	// CitationTitles makes web search fetch cited pages for their titles.
	CitationTitles bool `yaml:"citation_titles"`

	Retry      *retry.Config              `yaml:"retry"`
	Endpoints  map[string]client.Endpoint `yaml:"endpoints"`
	MCPServers []MCPServer                `yaml:"mcp_servers"`

	// API keys come from the environment only.
	APIKeys client.APIKeys `yaml:"-"`

	// Slots is the resolved model id per slot.
	Slots map[ai.ModelSlot]string `yaml:"-"`
}

// Defaults returns the settings used before any file or variable applies.
func Defaults() *Config {
	rc := retry.DefaultConfig()
	return &Config{
		Retry:       &rc,
		Models:      map[string]string{},
		Workspace:   ".",
		PadsDir:     ".steward/pads",
		SessionsDir: ".steward/sessions",
		Listen:      ":8000",
		LogLevel:    "info",
		Endpoints:   map[string]client.Endpoint{},
	}
}

// Load reads path, or DefaultFile when path is empty. A missing default
// file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = getEnvOrDefault("STEWARD_CONFIG", DefaultFile)
		explicit = os.Getenv("STEWARD_CONFIG") != ""
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	ApplyEnv(cfg)
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings with STEWARD_* variables and reads the
// provider API keys.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("STEWARD_WORKSPACE"); v != "" {
		cfg.Workspace = v
	}
	if v := os.Getenv("STEWARD_PADS_DIR"); v != "" {
		cfg.PadsDir = v
	}
	if v := os.Getenv("STEWARD_SESSIONS_DIR"); v != "" {
		cfg.SessionsDir = v
	}
	if v := os.Getenv("STEWARD_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("STEWARD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.CitationTitles = getEnvBoolOrDefault("STEWARD_CITATION_TITLES", cfg.CitationTitles)
	if cfg.Models == nil {
		cfg.Models = map[string]string{}
	}
	for _, slot := range ai.Slots {
		if v := os.Getenv("STEWARD_MODEL_" + strings.ToUpper(string(slot))); v != "" {
			cfg.Models[string(slot)] = v
		}
	}

	cfg.APIKeys = client.APIKeys{
		Anthropic:  os.Getenv(envVar(ai.ProviderAnthropic)),
		OpenAI:     os.Getenv(envVar(ai.ProviderOpenAI)),
		Google:     getEnvOrDefault(envVar(ai.ProviderGoogle), os.Getenv("GOOGLE_API_KEY")),
		Perplexity: os.Getenv(envVar(ai.ProviderPerplexity)),
	}
}

func envVar(p ai.Provider) string {
	for _, info := range model.Providers {
		if info.ID == p {
			return info.EnvVar
		}
	}
	return strings.ToUpper(string(p)) + "_API_KEY"
}

func (c *Config) resolve() error {
	for name, id := range c.Models {
		if _, err := ai.ParseModelSlot(name); err != nil {
			return fmt.Errorf("config: models: %w", err)
		}
		if _, err := ai.ParseModelID(id); err != nil {
			return fmt.Errorf("config: models.%s: %w", name, err)
		}
	}
	for name, ep := range c.Endpoints {
		if ep.BaseURL == "" {
			return fmt.Errorf("config: endpoint %q has no base_url", name)
		}
		ep.APIKey = os.ExpandEnv(ep.APIKey)
		c.Endpoints[name] = ep
	}
	for i, s := range c.MCPServers {
		if s.Name == "" {
			return fmt.Errorf("config: mcp_servers[%d] has no name", i)
		}
		if s.Transport == "" {
			s.Transport = "stdio"
			if s.URL != "" {
				s.Transport = "http"
			}
		}
		if (s.Transport == "stdio" && s.Command == "") || (s.Transport == "http" && s.URL == "") {
			return fmt.Errorf("config: mcp server %q: %s transport needs a command or url", s.Name, s.Transport)
		}
		c.MCPServers[i] = s
	}

	ws, err := filepath.Abs(c.Workspace)
	if err != nil {
		return fmt.Errorf("config: workspace: %w", err)
	}
	c.Workspace = ws
	if !filepath.IsAbs(c.PadsDir) {
		c.PadsDir = filepath.Join(ws, c.PadsDir)
	}
	if !filepath.IsAbs(c.SessionsDir) {
		c.SessionsDir = filepath.Join(ws, c.SessionsDir)
	}

	c.Slots = model.Defaults(c.Configured)
	for name, id := range c.Models {
		slot, _ := ai.ParseModelSlot(name)
		c.Slots[slot] = id
	}
	return nil
}

// Configured reports whether p has an API key.
func (c *Config) Configured(p ai.Provider) bool {
	switch p {
	case ai.ProviderAnthropic:
		return c.APIKeys.Anthropic != ""
	case ai.ProviderOpenAI:
		return c.APIKeys.OpenAI != ""
	case ai.ProviderGoogle:
		return c.APIKeys.Google != ""
	case ai.ProviderPerplexity:
		return c.APIKeys.Perplexity != ""
	}
	return false
}

// Client returns the settings for the unified model client.
func (c *Config) Client(logger *slog.Logger) client.Config {
	return client.Config{
		APIKeys:   c.APIKeys,
		Endpoints: c.Endpoints,
		Retry:     c.Retry,
		Logger:    logger,
	}
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

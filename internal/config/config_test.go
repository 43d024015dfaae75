package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/steward"
)

var envKeys = []string{
	"STEWARD_CONFIG", "STEWARD_WORKSPACE", "STEWARD_PADS_DIR", "STEWARD_SESSIONS_DIR",
	"STEWARD_LISTEN", "STEWARD_LOG_LEVEL", "STEWARD_CITATION_TITLES",
	"STEWARD_MODEL_CORE", "STEWARD_MODEL_EDITOR", "STEWARD_MODEL_REASONER", "STEWARD_MODEL_ROUTER",
	"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "PERPLEXITY_API_KEY",
}

// isolate runs the test in an empty directory with every variable the
// loader reads cleared.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")

	cfg, err := Load("")
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	ws, err := filepath.EvalSymlinks(cfg.Workspace)
	require.NoError(t, err)
	assert.Equal(t, resolved, ws)
	assert.Equal(t, filepath.Join(cfg.Workspace, ".steward/pads"), cfg.PadsDir)
	assert.Equal(t, ":8000", cfg.Listen)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, "sk-ant", cfg.APIKeys.Anthropic)
	assert.True(t, cfg.Configured(ai.ProviderAnthropic))
	assert.False(t, cfg.Configured(ai.ProviderOpenAI))
	assert.Equal(t, "builtin::anthropic::claude-sonnet-4-5", cfg.Slots[ai.SlotCore])
	assert.Equal(t, "builtin::anthropic::claude-haiku-4-5", cfg.Slots[ai.SlotRouter])
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("LOCAL_KEY", "secret")
	t.Setenv("STEWARD_LOG_LEVEL", "debug")
	t.Setenv("STEWARD_MODEL_ROUTER", "openai::gpt-4.1-mini")

	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
models:
  core: custom::local::llama3
workspace: /srv/project
pads_dir: /etc/steward/pads
listen: ":9000"
log_level: warn
retry:
  max_attempts: 2
  initial_delay: 500ms
endpoints:
  local:
    base_url: http://localhost:11434/v1
    api_key: ${LOCAL_KEY}
mcp_servers:
  - name: files
    command: mcp-files
    args: ["--root", "/srv"]
  - name: remote
    url: https://mcp.example.com/mcp
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/project", cfg.Workspace)
	assert.Equal(t, "/etc/steward/pads", cfg.PadsDir)
	assert.Equal(t, "/srv/project/.steward/sessions", cfg.SessionsDir)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	assert.Equal(t, "custom::local::llama3", cfg.Slots[ai.SlotCore])
	assert.Equal(t, "openai::gpt-4.1-mini", cfg.Slots[ai.SlotRouter])
	assert.Equal(t, "builtin::openai::gpt-4.1-mini", cfg.Slots[ai.SlotEditor])

	require.NotNil(t, cfg.Retry)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)

	assert.Equal(t, "secret", cfg.Endpoints["local"].APIKey)
	cc := cfg.Client(nil)
	assert.Equal(t, "sk-openai", cc.APIKeys.OpenAI)
	assert.Equal(t, "http://localhost:11434/v1", cc.Endpoints["local"].BaseURL)

	require.Len(t, cfg.MCPServers, 2)
	assert.Equal(t, "stdio", cfg.MCPServers[0].Transport)
	assert.Equal(t, "http", cfg.MCPServers[1].Transport)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.Unsetenv("PERPLEXITY_API_KEY"))
	t.Cleanup(func() { _ = os.Unsetenv("PERPLEXITY_API_KEY") })
	writeFile(t, filepath.Join(dir, ".env"), "PERPLEXITY_API_KEY=pplx-key\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "pplx-key", cfg.APIKeys.Perplexity)
	assert.Equal(t, "builtin::perplexity::sonar", cfg.Slots[ai.SlotCore])
}

func TestLoadGoogleKeyFallback(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "g-key", cfg.APIKeys.Google)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown slot", "models:\n  planner: openai::gpt-4.1\n"},
		{"bad model id", "models:\n  core: gpt-4.1\n"},
		{"endpoint without url", "endpoints:\n  local:\n    api_key: x\n"},
		{"mcp server without name", "mcp_servers:\n  - command: x\n"},
		{"http mcp server without url", "mcp_servers:\n  - name: x\n    transport: http\n"},
		{"invalid yaml", "models: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "steward.yaml")
			writeFile(t, path, tt.body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

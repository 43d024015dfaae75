package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// recordingModel replies with the model name it was asked for.
type recordingModel struct {
	fail  []error
	calls int
	got   []ai.Request
}

func (m *recordingModel) StreamChunks(ctx context.Context, req ai.Request) (<-chan ai.Chunk, error) {
	m.calls++
	m.got = append(m.got, req)
	if len(m.fail) > 0 {
		err := m.fail[0]
		m.fail = m.fail[1:]
		return nil, err
	}
	ch := make(chan ai.Chunk, 1)
	ch <- ai.TextChunk(req.ModelID)
	close(ch)
	return ch, nil
}

func fastRetry() *retry.Config {
	cfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
	return &cfg
}

func TestStreamChunksRoutesByProvider(t *testing.T) {
	claude := &recordingModel{}
	c := New(Config{Logger: quiet}, WithModel(ai.ProviderAnthropic, claude))

	ch, err := c.StreamChunks(context.Background(), ai.Request{ModelID: "builtin::anthropic::claude-haiku-4-5", Input: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", (<-ch).Text)
	require.Len(t, claude.got, 1)
	assert.Equal(t, "hi", claude.got[0].Input)
}

func TestStreamChunksRetriesOpen(t *testing.T) {
	m := &recordingModel{fail: []error{ai.NewTransientError("overloaded", 529, nil)}}
	c := New(Config{Logger: quiet, Retry: fastRetry()}, WithModel(ai.ProviderOpenAI, m))

	_, err := c.StreamChunks(context.Background(), ai.Request{ModelID: "openai::gpt-4.1"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.calls)
}

func TestStreamChunksErrors(t *testing.T) {
	c := New(Config{Logger: quiet})

	_, err := c.StreamChunks(context.Background(), ai.Request{ModelID: "gpt-4.1"})
	assert.True(t, ai.IsUserInput(err))

	_, err = c.StreamChunks(context.Background(), ai.Request{ModelID: "builtin::anthropic::claude-sonnet-4-5"})
	var missing *ErrMissingAPIKey
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "anthropic", missing.Provider)
	assert.Equal(t, `no API key configured for anthropic (required by model "builtin::anthropic::claude-sonnet-4-5")`, err.Error())

	_, err = c.StreamChunks(context.Background(), ai.Request{ModelID: "builtin::mistral::large"})
	var unknown *ErrUnknownProvider
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "unsupported provider: mistral", err.Error())

	_, err = c.StreamChunks(context.Background(), ai.Request{ModelID: "custom::local::qwen"})
	require.ErrorAs(t, err, &unknown)
	assert.True(t, unknown.Custom)
}

func TestCustomEndpoint(t *testing.T) {
	var model string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		model = gjson.GetBytes(raw, "model").String()
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, `data: {"id":"c","object":"chat.completion.chunk","created":1,"model":"qwen","choices":[{"index":0,"delta":{"content":"ok"},"finish_reason":"stop"}]}`+"\n\ndata: [DONE]\n\n")
	}))
	defer srv.Close()

	c := New(Config{Logger: quiet, Endpoints: map[string]Endpoint{"local": {BaseURL: srv.URL}}})
	ch, err := c.StreamChunks(context.Background(), ai.Request{ModelID: "custom::local::qwen", Input: "hi"})
	require.NoError(t, err)

	var text string
	for chunk := range ch {
		text += chunk.Text
	}
	assert.Equal(t, "ok", text)
	assert.Equal(t, "qwen", model)
}

func TestConfigured(t *testing.T) {
	c := New(Config{APIKeys: APIKeys{OpenAI: "k"}}, WithModel(ai.ProviderGoogle, &recordingModel{}))
	assert.True(t, c.Configured(ai.ProviderOpenAI))
	assert.True(t, c.Configured(ai.ProviderGoogle))
	assert.False(t, c.Configured(ai.ProviderAnthropic))
}

package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ai "github.com/spetersoncode/steward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

func newServer(t *testing.T, status int, body string, captured *string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if captured != nil {
			*captured = string(raw)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
		} else {
			w.Header().Set("Content-Type", "text/event-stream")
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func sse(payloads ...string) string {
	var b strings.Builder
	for _, p := range payloads {
		fmt.Fprintf(&b, "data: %s\n\n", p)
	}
	return b.String()
}

func newClient(t *testing.T, srv *httptest.Server) *Client {
	c, err := New(context.Background(), "key", WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestStreamChunks(t *testing.T) {
	var body string
	srv := newServer(t, http.StatusOK, sse(
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hel"}]}}]}`,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"lo"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":8,"cachedContentTokenCount":3,"candidatesTokenCount":2}}`,
	), &body)

	ch, err := newClient(t, srv).StreamChunks(context.Background(), ai.Request{
		Input:        "hi",
		SystemPrompt: "be brief",
		History:      []ai.Message{{Role: ai.RoleAssistant, Content: "earlier"}},
	})
	require.NoError(t, err)

	var chunks []ai.Chunk
	for c := range ch {
		chunks = append(chunks, c)
	}
	require.Len(t, chunks, 3)
	assert.Equal(t, "Hel", chunks[0].Text)
	assert.Equal(t, "lo", chunks[1].Text)
	assert.Equal(t, ai.CompletionMetadata{
		InputTokens:       8,
		CachedInputTokens: 3,
		OutputTokens:      2,
		FinishReason:      ai.FinishStop,
	}, *chunks[2].Metadata)

	assert.Equal(t, "be brief", gjson.Get(body, "systemInstruction.parts.0.text").String())
	assert.Equal(t, "model", gjson.Get(body, "contents.0.role").String())
	assert.Equal(t, "hi", gjson.Get(body, "contents.1.parts.0.text").String())
}

func TestStreamChunksBlocked(t *testing.T) {
	srv := newServer(t, http.StatusOK, sse(`{"promptFeedback":{"blockReason":"SAFETY"}}`), nil)

	ch, err := newClient(t, srv).StreamChunks(context.Background(), ai.Request{Input: "hi"})
	require.NoError(t, err)
	chunk := <-ch
	assert.True(t, chunk.IsError())
	assert.Equal(t, "request blocked: SAFETY", chunk.Message)
}

func TestStreamChunksOpenError(t *testing.T) {
	srv := newServer(t, http.StatusBadRequest, `{"error":{"code":400,"message":"invalid argument","status":"INVALID_ARGUMENT"}}`, nil)

	_, err := newClient(t, srv).StreamChunks(context.Background(), ai.Request{Input: "hi"})
	require.Error(t, err)
	assert.True(t, ai.IsUserInput(err))
}

func TestConvertSchema(t *testing.T) {
	s := convertSchema([]byte(`{
		"type": "object",
		"properties": {
			"file_paths": {"type": "array", "items": {"type": "string"}},
			"mode": {"type": "string", "enum": ["fast", "slow"]}
		},
		"required": ["file_paths"]
	}`))
	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"file_paths"}, s.Required)
	assert.Equal(t, genai.TypeString, s.Properties["file_paths"].Items.Type)
	assert.Equal(t, []string{"fast", "slow"}, s.Properties["mode"].Enum)

	assert.Nil(t, convertSchema([]byte("not json")))
}

func TestWrapError(t *testing.T) {
	err := wrapError(genai.APIError{Code: 503, Message: "overloaded"})
	assert.True(t, ai.IsTransient(err))
	assert.Equal(t, 503, ai.StatusCodeOf(err))
}

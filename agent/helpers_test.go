package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/content"
)

// scriptedModel replays one scripted reply per call, in order.
type scriptedModel struct {
	mu       sync.Mutex
	replies  [][]ai.Chunk
	errs     map[int]error
	requests []ai.Request
}

func newScriptedModel(replies ...[]ai.Chunk) *scriptedModel {
	return &scriptedModel{replies: replies, errs: map[int]error{}}
}

func (m *scriptedModel) StreamChunks(ctx context.Context, req ai.Request) (<-chan ai.Chunk, error) {
	m.mu.Lock()
	i := len(m.requests)
	m.requests = append(m.requests, req)
	err := m.errs[i]
	var chunks []ai.Chunk
	if i < len(m.replies) {
		chunks = m.replies[i]
	}
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	ch := make(chan ai.Chunk)
	go func() {
		defer close(ch)
		for _, c := range chunks {
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (m *scriptedModel) calls() []ai.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ai.Request(nil), m.requests...)
}

func text(parts ...string) []ai.Chunk {
	out := make([]ai.Chunk, len(parts))
	for i, p := range parts {
		out[i] = ai.TextChunk(p)
	}
	return out
}

// countingReader serves files from memory and counts reads.
type countingReader struct {
	files map[string]string
	reads map[string]int
}

func newCountingReader(files map[string]string) *countingReader {
	return &countingReader{files: files, reads: map[string]int{}}
}

func (r *countingReader) ReadFile(path string) (string, error) {
	r.reads[path]++
	body, ok := r.files[path]
	if !ok {
		return "", errors.New("no such file")
	}
	return body, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tickingClock() func() time.Time {
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func echoTool(opts ...ToolOption) *Tool {
	opts = append([]ToolOption{
		WithDescription("Echoes its text argument"),
		WithParam("text", "string"),
		WithInstructions("Use this tool to repeat text back."),
	}, opts...)
	return NewTool("test", "echo", func(ctx context.Context, ac *Context, out *content.Node, args Args) (any, error) {
		s := args.String("text")
		if err := ac.AppendChunk(out, ai.TextChunk(s)); err != nil {
			return nil, err
		}
		return s, nil
	}, opts...)
}

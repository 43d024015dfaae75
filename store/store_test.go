package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
)

func adapters(t *testing.T) map[string]Adapter {
	dir, err := NewDirAdapter(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)
	return map[string]Adapter{"memory": NewMemoryAdapter(), "dir": dir}
}

func TestAdapters(t *testing.T) {
	ctx := context.Background()
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := a.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, a.Set(ctx, "b", json.RawMessage(`{"n":2}`)))
			require.NoError(t, a.Set(ctx, "a", json.RawMessage(`{"n":1}`)))
			require.NoError(t, a.Set(ctx, "a", json.RawMessage(`{"n":3}`)))

			raw, ok, err := a.Get(ctx, "a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"n":3}`, string(raw))

			keys, err := a.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, keys)

			require.NoError(t, a.Delete(ctx, "a"))
			require.NoError(t, a.Delete(ctx, "a"))
			keys, err = a.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"b"}, keys)
		})
	}
}

func TestDirAdapterRejectsPaths(t *testing.T) {
	a, err := NewDirAdapter(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		assert.ErrorIs(t, a.Set(ctx, key, json.RawMessage(`1`)), ErrInvalidKey, key)
	}
}

func TestDirAdapterIgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	a, err := NewDirAdapter(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("x"), 0o644))
	require.NoError(t, a.Set(context.Background(), "s1", json.RawMessage(`{}`)))

	keys, err := a.Keys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, keys)
}

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	for name, a := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			s := NewSessions(a)
			s.now = fixedClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))

			first, err := s.Create(ctx)
			require.NoError(t, err)
			assert.NotEmpty(t, first.ID)

			second, err := s.Create(ctx)
			require.NoError(t, err)

			first.Session = agent.Session{
				History: []ai.Message{
					{Role: ai.RoleUser, Content: "  How   does the router\nwork?"},
					{Role: ai.RoleAssistant, Content: "It parses tags."},
				},
				PadIDs:        []string{"style"},
				ObservedFiles: map[string]string{"router/parse.go": "package router"},
			}
			require.NoError(t, s.Save(ctx, first))

			got, err := s.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "How does the router work?", got.Title)
			assert.Equal(t, first.Session, got.Session)
			assert.True(t, got.UpdatedAt.After(got.CreatedAt))

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, first.ID, list[0].ID)
			assert.Equal(t, second.ID, list[1].ID)

			require.NoError(t, s.Delete(ctx, second.ID))
			_, err = s.Get(ctx, second.ID)
			assert.ErrorIs(t, err, ErrKeyNotFound)
		})
	}
}

func TestSessionsOpen(t *testing.T) {
	ctx := context.Background()
	s := NewSessions(nil)

	fresh, err := s.Open(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.ID)

	named, err := s.Open(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "thread-1", named.ID)
	assert.Empty(t, named.Session.History)

	named.Session.History = []ai.Message{{Role: ai.RoleUser, Content: "hi"}}
	require.NoError(t, s.Save(ctx, named))
	again, err := s.Open(ctx, "thread-1")
	require.NoError(t, err)
	assert.Len(t, again.Session.History, 1)
}

func TestTitleTruncates(t *testing.T) {
	long := strings.Repeat("word ", 30)
	title := titleOf([]ai.Message{{Role: ai.RoleAssistant, Content: "skip"}, {Role: ai.RoleUser, Content: long}})
	assert.Equal(t, titleLen+3, len([]rune(title)))
	assert.True(t, strings.HasSuffix(title, "..."))
	assert.Empty(t, titleOf(nil))
}

func TestSessionsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryAdapter()
	require.NoError(t, a.Set(ctx, "bad", json.RawMessage(`{"id":`)))

	_, err := NewSessions(a).Get(ctx, "bad")
	var se *SerializationError
	assert.ErrorAs(t, err, &se)
}

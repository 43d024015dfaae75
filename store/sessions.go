package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	ai "github.com/spetersoncode/steward"
	"github.com/spetersoncode/steward/agent"
)

const titleLen = 60

// Record is a stored conversation.
type Record struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Session   agent.Session `json:"session"`
}

// Sessions stores conversations by id.
type Sessions struct {
	mu      sync.Mutex
	adapter Adapter
	now     func() time.Time
}

// NewSessions creates a session store backed by adapter. If adapter is
// nil, a default in-memory adapter is used.
func NewSessions(adapter Adapter) *Sessions {
	if adapter == nil {
		adapter = NewMemoryAdapter()
	}
	return &Sessions{adapter: adapter, now: time.Now}
}

// Create stores and returns an empty conversation with a fresh id.
func (s *Sessions) Create(ctx context.Context) (*Record, error) {
	now := s.now()
	rec := &Record{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	if err := put(ctx, s.adapter, rec.ID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get loads a conversation. It returns ErrKeyNotFound for unknown ids.
func (s *Sessions) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := get[Record](ctx, s.adapter, id)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Open loads the conversation with id, or creates an empty one under that
// id when it does not exist yet.
func (s *Sessions) Open(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return s.Create(ctx)
	}
	rec, err := s.Get(ctx, id)
	if errors.Is(err, ErrKeyNotFound) {
		now := s.now()
		return &Record{ID: id, CreatedAt: now, UpdatedAt: now}, nil
	}
	return rec, err
}

// Save writes rec, stamping its update time and deriving a title from the
// first user message when it has none.
func (s *Sessions) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.UpdatedAt = s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	if rec.Title == "" {
		rec.Title = titleOf(rec.Session.History)
	}
	return put(ctx, s.adapter, rec.ID, rec)
}

// Delete removes a conversation.
func (s *Sessions) Delete(ctx context.Context, id string) error {
	return s.adapter.Delete(ctx, id)
}

// List returns every conversation, most recently updated first.
func (s *Sessions) List(ctx context.Context) ([]*Record, error) {
	keys, err := s.adapter.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(keys))
	for _, key := range keys {
		rec, err := s.Get(ctx, key)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b *Record) int {
		return cmp.Compare(b.UpdatedAt.UnixNano(), a.UpdatedAt.UnixNano())
	})
	return out, nil
}

func titleOf(history []ai.Message) string {
	for _, m := range history {
		if m.Role != ai.RoleUser {
			continue
		}
		title := strings.Join(strings.Fields(m.Content), " ")
		if r := []rune(title); len(r) > titleLen {
			title = string(r[:titleLen]) + "..."
		}
		return title
	}
	return ""
}

func get[T any](ctx context.Context, a Adapter, key string) (T, error) {
	var v T
	raw, ok, err := a.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &SerializationError{Key: key, Err: err}
	}
	return v, nil
}

func put[T any](ctx context.Context, a Adapter, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &SerializationError{Key: key, Err: err}
	}
	return a.Set(ctx, key, raw)
}

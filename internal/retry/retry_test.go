package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"syscall"
	"testing"
	"time"

	ai "github.com/spetersoncode/steward"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o deadline" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

type apiError struct{ code int }

func (e apiError) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e apiError) StatusCode() int { return e.code }

// newTestRetrier records sleeps instead of waiting.
func newTestRetrier(cfg Config) (*Retrier, *[]time.Duration) {
	r := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return r, &slept
}

func TestConfigDelay(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}
	assert.Equal(t, 100*time.Millisecond, cfg.Delay(0))
	assert.Equal(t, 200*time.Millisecond, cfg.Delay(1))
	assert.Equal(t, 800*time.Millisecond, cfg.Delay(3))
	assert.Equal(t, time.Second, cfg.Delay(10))
	assert.Equal(t, 100*time.Millisecond, cfg.Delay(-1))

	jittered := Config{InitialDelay: time.Second, MaxDelay: time.Minute, Multiplier: 2, Jitter: 0.1}
	for range 20 {
		d := jittered.Delay(0)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}

func TestDoRetriesTransient(t *testing.T) {
	r, slept := newTestRetrier(Config{MaxAttempts: 3, InitialDelay: time.Millisecond, Multiplier: 2})
	calls := 0
	got, err := Do(context.Background(), r, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", timeoutError{}
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, *slept)
}

func TestDoStopsOnPermanent(t *testing.T) {
	r, slept := newTestRetrier(DefaultConfig())
	bad := ai.NewPermanentError("invalid api key", 401, nil)
	calls := 0
	_, err := Do(context.Background(), r, func(ctx context.Context) (int, error) {
		calls++
		return 0, bad
	})
	assert.ErrorIs(t, err, bad)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestDoExhausts(t *testing.T) {
	r, slept := newTestRetrier(Config{MaxAttempts: 3, InitialDelay: time.Millisecond})
	calls := 0
	_, err := Do(context.Background(), r, func(ctx context.Context) (int, error) {
		calls++
		return 0, apiError{code: 503}
	})
	assert.Equal(t, apiError{code: 503}, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, *slept, 2)
}

func TestDoHonorsRetryAfter(t *testing.T) {
	r, slept := newTestRetrier(Config{MaxAttempts: 2, InitialDelay: time.Millisecond})
	_, _ = Do(context.Background(), r, func(ctx context.Context) (int, error) {
		return 0, ai.NewTransientErrorWithRetry("rate limited", 429, 5*time.Second, nil)
	})
	assert.Equal(t, []time.Duration{5 * time.Second}, *slept)
}

func TestDoStopsOnCancel(t *testing.T) {
	r, _ := newTestRetrier(Config{MaxAttempts: 5, InitialDelay: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, r, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, timeoutError{}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDisabledMakesOneAttempt(t *testing.T) {
	r, _ := newTestRetrier(Disabled())
	calls := 0
	_, err := Do(context.Background(), r, func(ctx context.Context) (int, error) {
		calls++
		return 0, timeoutError{}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestStreamRetriesOpen(t *testing.T) {
	r, _ := newTestRetrier(Config{MaxAttempts: 3, InitialDelay: time.Millisecond})
	opens := 0
	model := ai.LanguageModelFunc(func(ctx context.Context, req ai.Request) (<-chan ai.Chunk, error) {
		opens++
		if opens == 1 {
			return nil, ai.NewTransientError("overloaded", 529, nil)
		}
		ch := make(chan ai.Chunk, 1)
		ch <- ai.TextChunk(req.Input)
		close(ch)
		return ch, nil
	})

	ch, err := r.Stream(model).StreamChunks(context.Background(), ai.Request{Input: "hi"})
	require.NoError(t, err)
	chunk := <-ch
	assert.Equal(t, "hi", chunk.Text)
	assert.Equal(t, 2, opens)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"categorized transient", ai.NewTransientError("x", 500, nil), true},
		{"categorized user input", ai.NewUserInputError("x", 400, nil), false},
		{"status 429", apiError{429}, true},
		{"status 502", apiError{502}, true},
		{"status 404", apiError{404}, false},
		{"net timeout", timeoutError{}, true},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"message pattern", errors.New("upstream said: Service Unavailable"), true},
		{"plain", errors.New("malformed request"), false},
		{"cancelled", fmt.Errorf("open: %w", context.Canceled), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

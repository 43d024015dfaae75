package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	ai "github.com/spetersoncode/steward"
)

// Retrier runs functions under a Config, logging each failed attempt.
type Retrier struct {
	cfg    Config
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a Retrier. A nil logger uses slog.Default.
func New(cfg Config, logger *slog.Logger) *Retrier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrier{cfg: cfg, logger: logger, sleep: sleepCtx}
}

// Do calls fn until it succeeds, fails with a non-transient error, runs out
// of attempts, or ctx is done.
func Do[T any](ctx context.Context, r *Retrier, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	n := r.cfg.attempts()
	for attempt := range n {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !IsTransient(err) || attempt == n-1 {
			break
		}
		delay := effectiveDelay(r.cfg.Delay(attempt), err)
		r.logger.Warn("retrying after transient error",
			"attempt", attempt+1,
			"max_attempts", n,
			"delay", delay,
			"error", err,
		)
		if err := r.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// Stream wraps a language model so that opening its stream is retried.
func (r *Retrier) Stream(model ai.LanguageModel) ai.LanguageModel {
	return ai.LanguageModelFunc(func(ctx context.Context, req ai.Request) (<-chan ai.Chunk, error) {
		return Do(ctx, r, func(ctx context.Context) (<-chan ai.Chunk, error) {
			return model.StreamChunks(ctx, req)
		})
	})
}

// effectiveDelay honors a server Retry-After when it is longer than the backoff.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	var ce ai.CategorizedError
	if errors.As(err, &ce) && ce.RetryAfter() > configured {
		return ce.RetryAfter()
	}
	return configured
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

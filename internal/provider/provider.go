// Package provider holds helpers shared by the model adapters in its
// subpackages. Each adapter implements steward.LanguageModel on top of a
// vendor SDK: failures before the first event are returned from
// StreamChunks as categorized errors so they can be retried, later
// failures arrive as error chunks, and usage is reported in a final
// completion-metadata chunk.
package provider

import (
	"context"
	"net/http"
	"strconv"
	"time"

	ai "github.com/spetersoncode/steward"
)

// Send delivers c on ch unless ctx is done first.
func Send(ctx context.Context, ch chan<- ai.Chunk, c ai.Chunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// CategorizeStatus maps an HTTP status to an error category.
func CategorizeStatus(code int) ai.ErrorCategory {
	switch {
	case code == 429, code == 529, code >= 500 && code < 600:
		return ai.ErrorTransient
	case code == 400, code == 404, code == 413, code == 422:
		return ai.ErrorUserInput
	default:
		return ai.ErrorPermanent
	}
}

// Categorize wraps an SDK error with the category its status implies.
func Categorize(err error, code int, retryAfter time.Duration) error {
	msg := err.Error()
	switch CategorizeStatus(code) {
	case ai.ErrorTransient:
		if retryAfter > 0 {
			return ai.NewTransientErrorWithRetry(msg, code, retryAfter, err)
		}
		return ai.NewTransientError(msg, code, err)
	case ai.ErrorUserInput:
		return ai.NewUserInputError(msg, code, err)
	default:
		return ai.NewPermanentError(msg, code, err)
	}
}

// RetryAfter reads the Retry-After header of resp, in seconds or HTTP-date form.
func RetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

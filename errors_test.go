package steward

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategories(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name      string
		err       error
		transient bool
		permanent bool
		userInput bool
		code      int
	}{
		{"transient", NewTransientError("rate limited", 429, cause), true, false, false, 429},
		{"permanent", NewPermanentError("bad key", 401, cause), false, true, false, 401},
		{"user input", NewUserInputError("bad request", 400, cause), false, false, true, 400},
		{"plain error", cause, false, false, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("wrapped: %w", tt.err)
			assert.Equal(t, tt.transient, IsTransient(wrapped))
			assert.Equal(t, tt.permanent, IsPermanent(wrapped))
			assert.Equal(t, tt.userInput, IsUserInput(wrapped))
			assert.Equal(t, tt.code, StatusCodeOf(wrapped))
		})
	}
}

func TestErrorRetryAfter(t *testing.T) {
	err := NewTransientErrorWithRetry("slow down", 429, 3*time.Second, nil)
	assert.True(t, err.Retryable())
	assert.Equal(t, 3*time.Second, RetryAfterOf(fmt.Errorf("x: %w", err)))
	assert.Equal(t, "slow down", err.Error())
}

func TestModelError(t *testing.T) {
	cause := NewPermanentError("model not found", 404, nil)
	err := &ModelError{ModelID: "builtin::openai::gpt-4.1", Err: cause}

	assert.Equal(t, "error using model builtin::openai::gpt-4.1: model not found", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsPermanent(err))
}

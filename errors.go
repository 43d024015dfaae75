package steward

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCategory tells the retry layer and the agents what to do with a
// provider failure.
type ErrorCategory string

const (
	// ErrorTransient failures may succeed when retried: rate limits,
	// overloaded servers, dropped connections.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent failures will not: bad credentials, unknown models.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput failures need a different request: malformed model
	// ids, oversized prompts, content policy rejections.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is implemented by errors that know their category.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool
	StatusCode() int
	RetryAfter() time.Duration
}

// Error is a provider failure with its category, HTTP status (0 when not
// applicable) and the delay the server asked for, if any.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int
	RetryDelay time.Duration
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error             { return e.Cause }
func (e *Error) Category() ErrorCategory   { return e.Cat }
func (e *Error) Retryable() bool           { return e.Cat == ErrorTransient }
func (e *Error) StatusCode() int           { return e.Code }
func (e *Error) RetryAfter() time.Duration { return e.RetryDelay }

// NewTransientError creates a retryable error.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: statusCode, Cause: cause}
}

// NewTransientErrorWithRetry creates a retryable error carrying the server's
// Retry-After delay.
func NewTransientErrorWithRetry(msg string, statusCode int, retryAfter time.Duration, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: statusCode, RetryDelay: retryAfter, Cause: cause}
}

// NewPermanentError creates an error that must not be retried.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorPermanent, Code: statusCode, Cause: cause}
}

// NewUserInputError creates an error caused by the request itself.
func NewUserInputError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorUserInput, Code: statusCode, Cause: cause}
}

func categorized(err error) (CategorizedError, bool) {
	var ce CategorizedError
	ok := errors.As(err, &ce)
	return ce, ok
}

func categoryOf(err error) ErrorCategory {
	if ce, ok := categorized(err); ok {
		return ce.Category()
	}
	return ""
}

// IsTransient reports whether err, or an error it wraps, is transient.
func IsTransient(err error) bool { return categoryOf(err) == ErrorTransient }

// IsPermanent reports whether err, or an error it wraps, is permanent.
func IsPermanent(err error) bool { return categoryOf(err) == ErrorPermanent }

// IsUserInput reports whether err, or an error it wraps, was caused by the request.
func IsUserInput(err error) bool { return categoryOf(err) == ErrorUserInput }

// StatusCodeOf returns the HTTP status of a categorized error, or 0.
func StatusCodeOf(err error) int {
	if ce, ok := categorized(err); ok {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the server-requested delay of a categorized error, or 0.
func RetryAfterOf(err error) time.Duration {
	if ce, ok := categorized(err); ok {
		return ce.RetryAfter()
	}
	return 0
}

// ModelError names the model a failure came from. Its message is what
// users see in the error chunk that replaces the model's reply.
type ModelError struct {
	ModelID string
	Err     error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("error using model %s: %v", e.ModelID, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

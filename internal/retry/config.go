// Package retry re-attempts model stream establishment with exponential
// backoff. Only the open is retried: once a stream delivers its first
// chunk, later failures belong to the caller.
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Config holds backoff parameters.
type Config struct {
	// MaxAttempts counts the initial attempt. Values below 1 mean one attempt.
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	// Jitter scales each delay by a random factor in [1-Jitter, 1+Jitter].
	Jitter float64 `yaml:"jitter"`
}

// DefaultConfig returns 5 attempts starting at 1s, doubling up to 30s, with 10% jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Disabled returns a single-attempt configuration.
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// Delay returns the wait before retry number attempt (0-indexed).
func (c Config) Delay(attempt int) time.Duration {
	attempt = max(attempt, 0)
	mult := c.Multiplier
	if mult <= 0 {
		mult = 1
	}
	delay := float64(c.InitialDelay) * math.Pow(mult, float64(attempt))
	if c.MaxDelay > 0 && delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}
	if c.Jitter > 0 {
		delay *= 1 + (rand.Float64()*2-1)*c.Jitter
	}
	return time.Duration(delay)
}

func (c Config) attempts() int {
	return max(c.MaxAttempts, 1)
}

package common

import (
	"context"
	"time"
)

// WithRetry runs fn up to attempts times, doubling the delay between tries.
// It stops early if the context is cancelled and wraps the final failure in
// an ExternalDependencyError.
func WithRetry(ctx context.Context, op string, attempts int, delay time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return &ExternalDependencyError{Op: op, Attempts: i + 1, Err: ctx.Err()}
		case <-time.After(delay):
			delay *= 2
		}
	}

	return &ExternalDependencyError{Op: op, Attempts: attempts, Err: err}
}

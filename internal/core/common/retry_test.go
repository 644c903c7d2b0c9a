package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_EventualSuccess(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), "embed", 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_Exhausted(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := WithRetry(context.Background(), "stage samples", 3, time.Millisecond, func(ctx context.Context) error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var depErr *ExternalDependencyError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, "stage samples", depErr.Op)
	assert.Equal(t, 3, depErr.Attempts)
	assert.ErrorIs(t, err, boom)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := WithRetry(ctx, "fetch page", 5, time.Minute, func(ctx context.Context) error {
		calls++
		return errors.New("unavailable")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

package gcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoffStopsOnSuccess(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), "obj", 4, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoffDoesNotWaitAfterLastAttempt(t *testing.T) {
	calls := 0
	start := time.Now()
	// Waits are 20ms then 40ms; a trailing wait would add another 80ms.
	err := retryWithBackoff(context.Background(), "obj", 3, 20*time.Millisecond, func() error {
		calls++
		return errors.New("still failing")
	})
	elapsed := time.Since(start)

	require.EqualError(t, err, "still failing")
	assert.Equal(t, 3, calls)
	assert.Less(t, elapsed, 130*time.Millisecond)
}

func TestRetryWithBackoffHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retryWithBackoff(ctx, "obj", 4, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_UpdateAndCheck(t *testing.T) {
	r := newRateLimiter(0)
	reset := time.Now().Add(30 * time.Minute)
	r.UpdateLimit(42, reset)

	remaining, resetTime, err := r.CheckLimit()
	require.NoError(t, err)
	assert.Equal(t, 42, remaining)
	assert.Equal(t, reset, resetTime)
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	r := newRateLimiter(0)
	r.UpdateLimit(1, time.Now().Add(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_WaitAfterResetPassed(t *testing.T) {
	r := newRateLimiter(0)
	r.UpdateLimit(0, time.Now().Add(-time.Second))

	require.NoError(t, r.Wait(context.Background()))
	remaining, _, _ := r.CheckLimit()
	assert.Equal(t, defaultRateLimit, remaining)
}

func TestRateLimiter_Backoff(t *testing.T) {
	r := newRateLimiter(0)
	r.Backoff(time.Now().Add(time.Hour))
	// An earlier deadline does not shorten the backoff.
	r.Backoff(time.Now().Add(time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

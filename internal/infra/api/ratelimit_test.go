package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstThenThrottle(t *testing.T) {
	limiter := NewRateLimiter(20, 2)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx))
	require.NoError(t, limiter.Wait(ctx))
	assert.Less(t, time.Since(start), 25*time.Millisecond, "burst should not block")

	require.NoError(t, limiter.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond, "third call waits for a token")
}

func TestRateLimiter_ContextCanceled(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Error(t, limiter.Wait(ctx))
}

func TestRateLimiter_Accessors(t *testing.T) {
	limiter := NewRateLimiter(10, 20)
	assert.Equal(t, 10.0, limiter.Limit())
	assert.Equal(t, 20, limiter.Burst())
}

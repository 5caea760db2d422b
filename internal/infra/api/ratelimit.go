package api

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"newsclient/internal/observability/metrics"
)

// RateLimiter implements token bucket algorithm for rate limiting.
// It keeps the client from flooding the news API when the user pages quickly
// or several views load at once.
type RateLimiter struct {
	rate    rate.Limit
	burst   int
	limiter *rate.Limiter
}

// NewRateLimiter creates a new RateLimiter with the specified rate and burst capacity.
//
// The token bucket algorithm allows up to 'burst' requests immediately,
// then refills tokens at 'requestsPerSecond' rate.
//
// Example:
//
//	limiter := NewRateLimiter(10, 20)  // 10 req/s with burst of 20
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	r := rate.Limit(requestsPerSecond)
	return &RateLimiter{
		rate:    r,
		burst:   burst,
		limiter: rate.NewLimiter(r, burst),
	}
}

// Wait blocks until a token is available or the context is canceled.
// Time spent blocked is recorded in the rate limit wait histogram.
func (r *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()
	err := r.limiter.Wait(ctx)
	metrics.RecordRateLimitWait(time.Since(start))
	return err
}

// Limit returns the sustained rate in requests per second.
func (r *RateLimiter) Limit() float64 {
	return float64(r.rate)
}

// Burst returns the bucket size.
func (r *RateLimiter) Burst() int {
	return r.burst
}

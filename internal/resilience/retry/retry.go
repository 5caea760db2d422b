// Package retry repeats an operation that failed transiently, waiting an
// exponentially growing, jittered delay between attempts. The feed loader uses
// it for its single automatic retry.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"syscall"
	"time"
)

// Config tunes the attempts and the delays between them.
type Config struct {
	// MaxAttempts counts the first attempt too. Values below 1 mean 1.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps every wait.
	MaxDelay time.Duration
	// Multiplier grows the wait after each retry.
	Multiplier float64
	// JitterFraction adds up to this fraction of the wait at random (0..1).
	JitterFraction float64
}

// FeedFetchConfig is used for news pages: one retry, one second later.
func FeedFetchConfig() Config {
	return WithRetries(1, time.Second)
}

// WithRetries allows retries attempts after the first, starting at initialDelay.
// Negative retries mean none.
func WithRetries(retries int, initialDelay time.Duration) Config {
	return Config{
		MaxAttempts:    max(retries, 0) + 1,
		InitialDelay:   initialDelay,
		MaxDelay:       30 * time.Second,
		Multiplier:     2,
		JitterFraction: 0.1,
	}
}

// delay returns the wait after the given failed attempt (1-based), before jitter.
func (c Config) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= c.Multiplier
	}
	if c.MaxDelay > 0 && d > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(d)
}

// Do runs fn until it succeeds, fails with an error IsRetryable rejects, ctx
// ends, or cfg.MaxAttempts is used up. With more than one attempt the last
// error is wrapped with the attempt count; otherwise it is returned as is.
func Do[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := max(cfg.MaxAttempts, 1)

	var zero T
	for attempt := 1; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				slog.Info("operation succeeded after retry", slog.Int("attempt", attempt))
			}
			return v, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		if attempt == attempts {
			if attempts == 1 {
				return zero, err
			}
			return zero, fmt.Errorf("max retry attempts (%d) exceeded: %w", attempts, err)
		}

		wait := jitter(cfg.delay(attempt), cfg.JitterFraction)
		slog.Warn("operation failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("delay", wait),
			slog.Any("error", err))

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}
}

// retryable is implemented by errors that classify themselves
// (network failures, HTTP status errors, decode errors).
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, errno := range []error{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.ENETUNREACH} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// jitter adds a random share of up to fraction of d, so clients that failed
// together do not retry together.
func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return d
	}
	fraction = min(fraction, 1)
	// #nosec G404 -- math/rand is sufficient for backoff jitter.
	return d + time.Duration(rand.Float64()*float64(d)*fraction)
}

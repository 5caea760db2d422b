// Package circuitbreaker stops calling a dependency that keeps failing.
// It wraps github.com/sony/gobreaker and reports state changes to the log and
// to the newsclient_circuit_breaker_state gauge.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"newsclient/internal/observability/metrics"
)

// Config tunes one breaker.
type Config struct {
	// Name labels logs and metrics.
	Name string
	// HalfOpenProbes is how many calls may test the dependency while half-open.
	HalfOpenProbes uint32
	// CountWindow clears the closed-state counts periodically. Zero keeps them until the state changes.
	CountWindow time.Duration
	// OpenTimeout is how long the circuit stays open before probing again.
	OpenTimeout time.Duration
	// TripRatio is the failure ratio (0..1] that opens the circuit.
	TripRatio float64
	// MinRequests is how many calls in the window are needed before TripRatio applies.
	MinRequests uint32
	// IsSuccessful reports whether an error still counts as a success.
	// Nil means only a nil error does.
	IsSuccessful func(err error) bool
}

// NewsAPIConfig is used for the news backend. It is the client's only
// dependency, so the circuit probes again quickly.
func NewsAPIConfig() Config {
	return Config{
		Name:           "news-api",
		HalfOpenProbes: 3,
		CountWindow:    30 * time.Second,
		OpenTimeout:    15 * time.Second,
		TripRatio:      0.6,
		MinRequests:    5,
	}
}

// ArticleReaderConfig is used for third-party article pages, which fail for
// reasons unrelated to load (blocking, layout changes).
func ArticleReaderConfig() Config {
	return Config{
		Name:           "article-reader",
		HalfOpenProbes: 3,
		CountWindow:    time.Minute,
		OpenTimeout:    5 * time.Minute,
		TripRatio:      0.8,
		MinRequests:    5,
	}
}

// CircuitBreaker guards calls to one dependency.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New creates a closed breaker.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.HalfOpenProbes,
		Interval:     cfg.CountWindow,
		Timeout:      cfg.OpenTimeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip:  tripAt(cfg.MinRequests, cfg.TripRatio),
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.RecordBreakerState(name, stateValue(to))
		},
	}
	metrics.RecordBreakerState(cfg.Name, stateValue(gobreaker.StateClosed))

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

func tripAt(minRequests uint32, ratio float64) func(gobreaker.Counts) bool {
	return func(c gobreaker.Counts) bool {
		if c.Requests == 0 || c.Requests < minRequests {
			return false
		}
		return float64(c.TotalFailures)/float64(c.Requests) >= ratio
	}
}

// stateValue maps a state to the gauge value: 0 closed, 1 half-open, 2 open.
func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Call runs fn through cb. A rejected call returns the zero T and an error
// for which IsRejection is true; fn is not run.
func Call[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	out, err := cb.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	v, ok := out.(T)
	if !ok {
		v = zero
	}
	return v, err
}

// State returns the current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the configured name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// IsOpen reports whether calls are currently rejected.
func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}

// IsRejection reports whether err means the breaker refused the call
// without running it (open circuit, or half-open with too many probes).
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

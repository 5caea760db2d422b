package circuitbreaker

import (
	"errors"
	"net/http"
)

// errServerStatus marks a 5xx response as a breaker failure while the
// response itself is still handed back to the caller.
var errServerStatus = errors.New("server error status")

// Transport is an http.RoundTripper guarded by a breaker.
// Transport errors and 5xx responses count as failures. 4xx responses do not:
// they describe the request, not the health of the server.
type Transport struct {
	cb   *CircuitBreaker
	next http.RoundTripper
}

// NewTransport wraps next, or http.DefaultTransport when next is nil.
func NewTransport(cb *CircuitBreaker, next http.RoundTripper) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{cb: cb, next: next}
}

// RoundTrip implements http.RoundTripper. While the circuit is open the
// request is not sent and the rejection error is returned.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := Call(t.cb, func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err == nil && resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, err
	})
	if errors.Is(err, errServerStatus) {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CircuitBreaker returns the guarding breaker.
func (t *Transport) CircuitBreaker() *CircuitBreaker {
	return t.cb
}

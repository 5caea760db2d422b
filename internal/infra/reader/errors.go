package reader

import "errors"

var (
	// ErrInvalidURL means the article URL is malformed or uses a disallowed scheme.
	ErrInvalidURL = errors.New("invalid article URL")

	// ErrPrivateIP means the article host resolves to a non-public address.
	ErrPrivateIP = errors.New("article URL resolves to a private address")

	// ErrTooManyRedirects means the redirect chain exceeded MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge means the page exceeded MaxBodySize.
	ErrBodyTooLarge = errors.New("article page too large")

	// ErrTimeout means the page did not arrive within Timeout.
	ErrTimeout = errors.New("article fetch timed out")

	// ErrNoContent means readability found nothing worth showing.
	ErrNoContent = errors.New("no readable content found")

	// ErrUnavailable means the reader's circuit breaker is open.
	ErrUnavailable = errors.New("article reader temporarily unavailable")
)

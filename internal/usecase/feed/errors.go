// Package feed provides the news feed use cases: a cached, de-duplicated,
// retrying page loader and the controller that accumulates pages for a view.
package feed

import "errors"

// Sentinel errors for feed use case operations.
var (
	// ErrInvalidLanguage indicates that the requested feed language is not supported.
	// Supported languages are "en" and "np".
	ErrInvalidLanguage = errors.New("invalid feed language")
)

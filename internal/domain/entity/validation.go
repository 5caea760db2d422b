package entity

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum accepted length of an article URL.
const maxURLLength = 2048

// ValidateArticleURL checks that an article URL can serve as an identity key and
// be opened by the reader: non-empty, bounded, absolute http(s) with a host.
func ValidateArticleURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "URL is malformed"}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}

// ValidateCredentials checks login input before it is sent.
func ValidateCredentials(c Credentials) error {
	if strings.TrimSpace(c.Username) == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	if c.Password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// ValidateEmail checks that s is a bare email address.
func ValidateEmail(s string) error {
	if s == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return &ValidationError{Field: "email", Message: "email is not a valid address"}
	}
	return nil
}

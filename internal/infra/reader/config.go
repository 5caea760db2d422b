package reader

import (
	"fmt"
	"time"
)

// Config controls full-article reading.
type Config struct {
	// Timeout bounds a single page fetch. Default: 10s
	Timeout time.Duration

	// MaxBodySize is the largest accepted page in bytes, enforced while reading.
	// Default: 10485760 (10MB)
	MaxBodySize int64

	// MaxRedirects is the number of redirects followed. Each target is validated.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs rejects URLs resolving to loopback, private or link-local addresses.
	// Default: true
	DenyPrivateIPs bool

	// UserAgent identifies the client to article hosts.
	UserAgent string
}

// DefaultConfig returns the default reader configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "newsclient/1.0",
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return nil
}

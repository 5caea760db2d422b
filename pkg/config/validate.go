package config

import (
	"fmt"
	"time"
)

// Positive rejects d <= 0. key names the setting in the error.
func Positive(key string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return nil
}

// NonNegative rejects d < 0.
func NonNegative(key string, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %v", key, d)
	}
	return nil
}

// Within rejects d outside [min, max].
func Within(key string, d, min, max time.Duration) error {
	if d < min || d > max {
		return fmt.Errorf("%s must be between %v and %v, got %v", key, min, max, d)
	}
	return nil
}

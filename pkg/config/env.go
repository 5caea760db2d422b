// Package config provides environment variable helpers for the client
// configuration loader. Invalid values never fail loading: they fall back to
// the default and log a warning.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookup returns the parsed value of key, or def when key is unset, blank or unparsable.
func lookup[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		slog.Warn("invalid environment value, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.Any("default", def),
			slog.Any("error", err))
		return def
	}
	return v
}

// String returns the value of key or def.
//
//	baseURL := config.String("NEWSCLIENT_API_BASE_URL", "http://localhost:8000/api")
func String(key, def string) string {
	return lookup(key, def, func(s string) (string, error) { return s, nil })
}

// Int returns key parsed as a decimal integer.
func Int(key string, def int) int {
	return lookup(key, def, strconv.Atoi)
}

// Int64 returns key parsed as a 64-bit integer, e.g. a size in bytes.
func Int64(key string, def int64) int64 {
	return lookup(key, def, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

// Float returns key parsed as a float64, e.g. a rate in requests per second.
func Float(key string, def float64) float64 {
	return lookup(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// Bool accepts the values understood by strconv.ParseBool.
func Bool(key string, def bool) bool {
	return lookup(key, def, strconv.ParseBool)
}

// Duration accepts time.ParseDuration syntax ("90s", "5m", "1h30m").
func Duration(key string, def time.Duration) time.Duration {
	return lookup(key, def, time.ParseDuration)
}

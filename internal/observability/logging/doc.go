// Package logging builds the client's slog logger and carries it, with the
// request ID, through contexts.
//
// Output goes to stderr by default so log lines never interleave with what the
// shell prints on stdout:
//
//	logger := logging.New(logging.Options{Level: "debug", Format: logging.FormatJSON})
//	slog.SetDefault(logger)
//
//	logging.WithRequestID(ctx, logger).Warn("request failed")
package logging

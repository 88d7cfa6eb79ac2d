package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is attached to every log line as the "service" field.
const ServiceName = "queued-ledger"

// New builds the process logger writing to stdout. pretty switches to the
// console writer for local runs and adds caller info.
func New(level string, pretty bool) zerolog.Logger {
	if !pretty {
		return build(os.Stdout, level).Logger()
	}
	w := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return build(w, level).Caller().Logger()
}

// NewWithWriter builds a JSON logger on w, mostly for tests.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return build(w, level).Logger()
}

// Component tags a child logger so engine, persistence and HTTP lines can be
// told apart.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func build(w io.Writer, level string) zerolog.Context {
	return zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("service", ServiceName)
}

// parseLevel accepts debug, info, warn and error in any case. Anything else
// falls back to info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

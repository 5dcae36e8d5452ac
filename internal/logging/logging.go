// Package logging centralizes the compositor's structured logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger. Dev builds (KESTREL_LOG_PRETTY=1) get a
// human-readable console writer; production defaults to JSON on stderr so
// the session compositor's log line up with the rest of the desktop
// stack's structured logs.
func New() zerolog.Logger {
	var w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("KESTREL_LOG_PRETTY") == "1" {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Sub returns a child logger tagged with the given subsystem name, the
// pattern used throughout the compositor to scope log lines emitted by the
// object manager, surface tree, seat, renderer, and so on.
func Sub(l zerolog.Logger, subsystem string) zerolog.Logger {
	return l.With().Str("subsystem", subsystem).Logger()
}

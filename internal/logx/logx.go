// Package logx configures zerolog for the jurybox daemon.
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Environment selects the log output format and level.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// ParseEnvironment normalises v, falling back to Development so the daemon
// can always start.
func ParseEnvironment(v string) Environment {
	if Environment(v) == Production {
		return Production
	}
	return Development
}

// New returns a logger writing to w: human-readable console output at debug
// level in development, JSON at info level in production.
func New(w io.Writer, env Environment) zerolog.Logger {
	if env == Production {
		return zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	}
	out := zerolog.ConsoleWriter{Out: w}
	return zerolog.New(out).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}

// NewDefault returns a stderr logger for the given environment string.
func NewDefault(env string) zerolog.Logger {
	return New(os.Stderr, ParseEnvironment(env))
}

// Nop returns a disabled logger for tests and library defaults.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

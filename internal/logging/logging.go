// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New returns a timestamped logger writing to out. Format "human" renders
// the console format, anything else JSON. An unknown level falls back to info.
func New(out io.Writer, level, format string) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if format == "human" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

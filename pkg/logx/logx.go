// Package logx builds the process logger.
package logx

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a timestamped JSON logger at the given level; unknown levels
// fall back to info. Set pretty for human-readable console output.
func New(level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if pretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stdout)
	}
	return log.With().Timestamp().Logger().Level(lvl)
}

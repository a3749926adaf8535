// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Configure sets the global logger. Console output goes to stderr so that
// command output on stdout stays pipeable; json switches to plain JSON lines.
func Configure(level string, json bool) error {
	return ConfigureWriter(os.Stderr, level, json)
}

// ConfigureWriter is Configure with an explicit destination.
func ConfigureWriter(out io.Writer, level string, json bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}
	zerolog.TimeFieldFormat = time.RFC3339

	w := out
	if !json {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}
	log.Logger = zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(lvl)
	return nil
}

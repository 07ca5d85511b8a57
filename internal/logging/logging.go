// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at file with the given level.
// The terminal belongs to the TUI, so logs never go to stdout.
// The returned closer flushes and closes the file.
func Setup(level, file string) (func(), error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return func() {}, err
	}
	zerolog.SetGlobalLevel(lvl)

	if file == "" {
		log.Logger = zerolog.New(io.Discard)
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return func() {}, errors.Wrap(err, "failed to create log directory")
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return func() {}, errors.Wrapf(err, "failed to open log file %s", file)
	}

	log.Logger = New(f)
	return func() { _ = f.Close() }, nil
}

// New returns a timestamped logger writing JSON lines to w
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

func parseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", level)
	}
	return lvl, nil
}

// Package logging builds the zerolog logger used across liifit.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config selects level, format and destination.
type Config struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error disabled"`
	Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output     string `yaml:"output" default:"stderr" validate:"required"` // stdout, stderr, or file path
	TimeFormat string `yaml:"time_format"`
}

// nopCloser is returned for the standard streams.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds a logger. The returned Closer releases a log file when Output
// is a path; it is a no-op for stdout/stderr.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("invalid log level: %w", err)
	}

	var out io.Writer
	var closer io.Closer = nopCloser{}
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("could not open log file: %w", err)
		}
		out, closer = f, f
	}

	return NewWriter(cfg, out).Level(level), closer, nil
}

// NewWriter builds a logger over an arbitrary writer, honoring Format and
// TimeFormat but not Level or Output.
func NewWriter(cfg Config, w io.Writer) zerolog.Logger {
	tf := cfg.TimeFormat
	if tf == "" {
		tf = time.RFC3339Nano
	}
	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: tf}
	}

	return zerolog.New(w).With().Timestamp().Logger()
}

// Package logging builds the logrus loggers used by the command-line tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options selects level, format and destination. Empty fields fall back to
// LOG_LEVEL and LOG_FORMAT, then to info/text on stderr.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New returns a configured logger. An unknown level is an error; an unknown
// format falls back to text.
func New(opts Options) (*logrus.Logger, error) {
	if opts.Level == "" {
		opts.Level = envOr("LOG_LEVEL", "info")
	}
	if opts.Format == "" {
		opts.Format = envOr("LOG_FORMAT", "text")
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	l := logrus.New()
	l.SetLevel(level)
	l.SetOutput(opts.Output)
	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l, nil
}

// Discard returns a logger that drops everything. Used where a tool draws to
// the terminal and log lines would corrupt the screen.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

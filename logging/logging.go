// Package logging builds the slog loggers used by the commands.
//
// Text output goes through charmbracelet/log, which renders levels and
// key/value pairs in colour on a terminal. JSON output goes through
// JSONHandler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

const (
	FormatText       = "text"
	FormatJSON       = "json"
	FormatPrettyJSON = "pretty-json"
)

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// New returns a logger writing to w in the given format.
func New(w io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		h := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
		})
		return slog.New(h), nil
	case FormatJSON:
		return slog.New(NewJSONHandler(w, JSONOptions{Level: level})), nil
	case FormatPrettyJSON:
		return slog.New(NewJSONHandler(w, JSONOptions{Level: level, Indent: true})), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// Discard is a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

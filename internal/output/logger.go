/*
PURPOSE:
  Provides the structured logger for jira-bridge.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - Stdout carries the command result only, so logs go to stderr.
  - Credentials must never be logged in clear text.

  Implementation-discovered:
  - Quiet by default (warn); --verbose / --log-level opens it up.
  - JSON handler for callers that parse stderr.

ARCHITECTURE INTEGRATION:
  - Used everywhere.

ERROR HANDLING:
  - Configure rejects unknown levels and formats.

IMPLEMENTATION RULES:
  - Use `log/slog`.
  - Every handler goes through redactAttr (see redact.go).

USAGE:
  output.Logger.Info("message", "key", "value")

SELF-HEALING INSTRUCTIONS:
  - If a secret shows up in logs, add its key fragment to sensitiveKeys.

RELATED FILES:
  - internal/output/redact.go

MAINTENANCE:
  - None.
*/

package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Log formats accepted by Configure.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var Logger *slog.Logger

func init() {
	Logger = NewLogger(os.Stderr, slog.LevelWarn, LogFormatText)
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// NewLogger builds a redacting logger writing to w.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactAttr,
	}
	if format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Configure replaces Logger according to CLI flags.
func Configure(w io.Writer, level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	switch format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", format, LogFormatText, LogFormatJSON)
	}
	SetLogger(NewLogger(w, lvl, format))
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

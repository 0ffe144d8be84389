// Package util provides shared logging setup for the stockboard tools.
package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Unrecognised input yields info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured logger writing to w at the specified
// level. format "json" selects the JSON handler; anything else is text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// LogFilePath returns the dated log file path for a tool:
// <dir>/<tool>-YYYY-MM-DD.log.
func LogFilePath(dir, tool string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s-%s.log", tool, now.Format("2006-01-02")))
}

// LogWriter returns stdout, or stdout teed into the tool's dated log file
// under os.TempDir when toFile is set. The returned close func is never nil.
func LogWriter(tool string, toFile bool) (io.Writer, func() error, error) {
	if !toFile {
		return os.Stdout, func() error { return nil }, nil
	}
	name := LogFilePath(os.TempDir(), tool, time.Now())
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return io.MultiWriter(os.Stdout, f), f.Close, nil
}

// SetDefault configures the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}

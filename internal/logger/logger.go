// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Init logs to stderr for commands; InitFile logs to a file under the TUI.

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LogFileName is the console's log file inside the config directory.
const LogFileName = "debug.log"

// Init configures the default slog logger based on environment variables.
// LOG_LEVEL: debug, info, warn, error (default: warn)
// LOG_FORMAT: text, json (default: text)
// Output goes to stderr so command output on stdout stays parseable.
func Init() {
	slog.SetDefault(slog.New(newHandler(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))))
}

// InitFile points the default logger at a file in configDir, since the
// interactive console owns the terminal. The returned func closes the file.
func InitFile(configDir string) (func() error, error) {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(configDir, LogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	slog.SetDefault(slog.New(newHandler(f, level, os.Getenv("LOG_FORMAT"))))
	return f.Close, nil
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}
	if strings.ToLower(format) == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Package logger holds the process-wide slog logger used by the pagekit
// commands. Library packages never log through it; they take a
// *slog.Logger in their options instead.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// L is the global logger instance. It discards all output until Init is
// called.
var L = slog.New(slog.DiscardHandler)

var closer io.Closer

// Options configures the logger.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Level   slog.Level // Minimum level. Default: LevelInfo
	JSON    bool       // JSON lines instead of logfmt text
	File    string     // Append to this file instead of Output
	Output  io.Writer  // Destination when File is empty. Default: os.Stderr
}

// Init configures logging. Call from main() before any log calls. Calling
// it again replaces the logger and closes a file opened by the previous
// call.
func Init(opts Options) error {
	if err := Close(); err != nil {
		return err
	}
	if !opts.Enabled {
		L = slog.New(slog.DiscardHandler)
		return nil
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		out = f
		closer = f
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(out, handlerOpts))
	} else {
		L = slog.New(slog.NewTextHandler(out, handlerOpts))
	}
	return nil
}

// Close closes the log file opened by Init, if any, and discards further
// output.
func Close() error {
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	L = slog.New(slog.DiscardHandler)
	return err
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }

// Package logger wraps log/slog with a process-wide handler and
// component-scoped loggers.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu       sync.Mutex
	base     *slog.Logger
	levelVar = new(slog.LevelVar)
	logFile  *os.File
)

// ParseLevel maps a config level name onto a slog.Level. Unknown names
// fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// SetLevel changes the minimum level at runtime.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// SetDebug toggles between debug and info.
func SetDebug(enabled bool) {
	if enabled {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// Init points the logger at path. An empty path or "-" logs to stderr.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	var w io.Writer = os.Stderr
	if path != "" && path != "-" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		w = f
	}
	base = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
	base.Info("Logger initialized", "path", path)
	return nil
}

// SetOutput replaces the handler with a text handler writing to w.
// Tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
}

// Logger returns the process logger, initialising a stderr logger on
// first use.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if base == nil {
		base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar}))
	}
	return base
}

// Component returns a logger with the component attribute pre-attached.
//
//	log := logger.Component("chat")
//	log.Debug("thread selected", "thread", id)
func Component(name string) *slog.Logger {
	return Logger().With(slog.String("component", name))
}

// Close closes the log file, if any, and falls back to stderr.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	base = nil
}

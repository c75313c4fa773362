// Package logging provides structured logging setup using log/slog.
package logging

import (
	"fmt"
	"log/slog"
	"os"
)

// DebugEnvVar enables debug logging when set to 1.
const DebugEnvVar = "NBWIN_DEBUG"

// Level represents the logging verbosity level.
type Level int

const (
	// LevelInfo is the default logging level for normal operation.
	LevelInfo Level = iota
	// LevelDebug enables verbose debug output.
	LevelDebug
)

func slogLevel(level Level) slog.Level {
	if level == LevelDebug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Setup initializes the global slog logger writing to stderr.
// Call this once at application startup.
func Setup(level Level) {
	opts := &slog.HandlerOptions{
		Level: slogLevel(level),
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	slog.SetDefault(slog.New(handler))
}

// SetupFile initializes the global slog logger writing to the given file.
// The TUI owns the terminal, so interactive mode logs here instead of stderr.
// The returned close function must be called at shutdown.
func SetupFile(path string, level Level) (func() error, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- path comes from XDG resolution
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	opts := &slog.HandlerOptions{
		Level: slogLevel(level),
	}

	handler := slog.NewTextHandler(file, opts)
	slog.SetDefault(slog.New(handler))

	return file.Close, nil
}

// LevelFromEnv returns the level selected by the NBWIN_DEBUG variable.
func LevelFromEnv() Level {
	if os.Getenv(DebugEnvVar) == "1" {
		return LevelDebug
	}
	return LevelInfo
}

// SetupFromEnv initializes the stderr logger based on environment variables.
// Set NBWIN_DEBUG=1 to enable debug logging.
func SetupFromEnv() {
	Setup(LevelFromEnv())
}

// Package logging configures codii's process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config controls log output.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// FilePath is where logs are written. Empty disables file logging.
	FilePath string
	// MaxSizeMB is the rotation threshold (default 10).
	MaxSizeMB int
	// MaxFiles caps the number of rotated files kept (default 5).
	MaxFiles int
	// WriteToStderr mirrors output to stderr (default true).
	WriteToStderr bool
}

// DefaultConfig returns the file-backed defaults used by the CLI.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DefaultLogPath returns <base_dir>/codii.log.
func DefaultLogPath() string {
	return filepath.Join(BaseDir(), "codii.log")
}

// BaseDir returns CODII_BASE_DIR or ~/.codii.
func BaseDir() string {
	if dir := os.Getenv("CODII_BASE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codii"
	}
	return filepath.Join(home, ".codii")
}

// Setup initializes the global slog logger and returns a cleanup func
// that must be called to flush and close the log file.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	if cfg.FilePath == "" {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.Level)}))
		return logger, func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, nil, err
	}

	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	logger := slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: parseLevel(cfg.Level)}))
	slog.SetDefault(logger)

	cleanup := func() { _ = writer.Close() }
	return logger, cleanup, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/five82/kimaideck/internal/config"
)

// newLogger builds the process logger.
func newLogger(cfg config.Log, driver string) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}

	path := logFilePath(cfg, driver)
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

// logFilePath is the file logs go to, or "" for stderr. The terminal driver
// owns the screen, so its logs go to a file even when none is configured.
func logFilePath(cfg config.Log, driver string) string {
	if cfg.File == "" && driver == config.DriverTerminal {
		return filepath.Join(os.TempDir(), "kimaideck.log")
	}
	return cfg.File
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"sketch2story/config"
)

// newLogger returns the session logger. The UI owns the terminal, so debug
// output goes to a file; without --debug everything is discarded.
func newLogger(cfg config.LogConfig, sessionID string) (*slog.Logger, func() error, error) {
	if !cfg.Debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler).With("session", sessionID), f.Close, nil
}

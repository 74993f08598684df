//go:build !debug

package main

import (
	"io"
	"log/slog"
)

// newLogger discards everything in release builds; the terminal belongs to
// the UI.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

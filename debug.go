//go:build debug

package main

import (
	"log/slog"
	"os"
)

// newLogger writes debug records to /tmp/vgrid.log when built with -tags debug.
func newLogger() *slog.Logger {
	f, err := os.OpenFile("/tmp/vgrid.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

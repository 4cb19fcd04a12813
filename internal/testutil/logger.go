// Package testutil holds helpers shared by package tests.
package testutil

import (
	"log/slog"
	"testing"
)

// NewTestLogger returns a logger that writes through t.Log, so output only
// shows for failing tests or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

package main

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestRouteLogsDiscardsUnderTUI(t *testing.T) {
	prevOut, prevLevel, prevDefault := logOutput, rootLogLevel, slog.Default()
	t.Cleanup(func() {
		logOutput, rootLogLevel = prevOut, prevLevel
		slog.SetDefault(prevDefault)
	})

	var buf bytes.Buffer
	logOutput = &buf
	rootLogLevel = "debug"
	if err := setupLogger(rootLogLevel); err != nil {
		t.Fatalf("setupLogger: %v", err)
	}
	if err := routeLogs(false); err != nil {
		t.Fatalf("routeLogs: %v", err)
	}
	slog.Debug("plain serve")
	if buf.Len() == 0 {
		t.Fatalf("expected debug output without the TUI")
	}

	buf.Reset()
	if err := routeLogs(true); err != nil {
		t.Fatalf("routeLogs: %v", err)
	}
	slog.Debug("under the tui")
	slog.Error("under the tui")
	// A config log level rebuilds the logger later; it must stay quiet.
	if err := setupLogger("info"); err != nil {
		t.Fatalf("setupLogger: %v", err)
	}
	slog.Info("after config")
	if buf.Len() != 0 {
		t.Fatalf("TUI mode leaked logs: %q", buf.String())
	}
}

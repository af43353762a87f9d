package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithOptions(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOptions(&buf, "warn", "json")
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Fatalf("expected JSON warn line, got %q", out)
	}
}

func TestNewWithOptionsErrors(t *testing.T) {
	if _, err := NewWithOptions(&bytes.Buffer{}, "loud", "text"); err == nil {
		t.Errorf("expected error for unknown level")
	}
	if _, err := NewWithOptions(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Errorf("expected error for unknown format")
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Fatalf("logger not retrieved from context")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Fatalf("expected default logger")
	}
}

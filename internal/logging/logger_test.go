package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestNew_LevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := New(Options{Level: "warn", Format: "json", Output: &buf})
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", "resource", "courses")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"resource":"courses"`) {
		t.Errorf("json output missing attribute: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}
	logger := slog.New(h).With("batch_id", "b-1")

	logger.Info("deleted")
	logger.Error("failed")

	if !strings.Contains(a.String(), "deleted") || !strings.Contains(a.String(), "failed") {
		t.Errorf("debug handler missing records: %s", a.String())
	}
	if strings.Contains(b.String(), "deleted") {
		t.Errorf("error handler received info record: %s", b.String())
	}
	if !strings.Contains(b.String(), "batch_id=b-1") {
		t.Errorf("attrs not propagated: %s", b.String())
	}
}

func TestFromContext_RequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	WithFields(ctx, "resource", "students").Info("listing rows")

	out := buf.String()
	if !strings.Contains(out, "request_id=req-42") {
		t.Errorf("missing request id: %s", out)
	}
	if !strings.Contains(out, "resource=students") {
		t.Errorf("missing field: %s", out)
	}
}

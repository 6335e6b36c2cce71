package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestNewJSONWriter_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo).With("component", "reconciler")

	logger.Info("pitcher resolved", "source", "official-api", "error", errors.New("boom"))
	logger.Debug("hidden")
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}

	var record map[string]any
	if err := sonic.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record["msg"] != "pitcher resolved" {
		t.Fatalf("unexpected msg: %v", record["msg"])
	}
	if record["component"] != "reconciler" {
		t.Fatalf("expected inherited component field, got %v", record["component"])
	}
	if record["error"] != "boom" {
		t.Fatalf("expected error field, got %v", record["error"])
	}
	if record["level"] != "INFO" {
		t.Fatalf("expected INFO level, got %v", record["level"])
	}
}

func TestSetMirror_ReceivesInheritedFields(t *testing.T) {
	var mu sync.Mutex
	var gotMsg string
	var gotArgs []any
	SetMirror(func(_ context.Context, _ Level, msg string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		gotMsg = msg
		gotArgs = args
	})
	t.Cleanup(func() { SetMirror(nil) })

	var buf bytes.Buffer
	logger := NewJSONWriter(&buf, LevelInfo).With("service", "test")
	logger.WarnContext(context.Background(), "cache write failed", "key", "games/2025-04-16")

	mu.Lock()
	defer mu.Unlock()
	if gotMsg != "cache write failed" {
		t.Fatalf("mirror did not receive record, got %q", gotMsg)
	}
	if len(gotArgs) != 4 || gotArgs[0] != "service" || gotArgs[2] != "key" {
		t.Fatalf("unexpected mirrored args: %v", gotArgs)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"DEBUG":   LevelDebug,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for raw, want := range cases {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("ParseLevel(%q)=%v, want %v", raw, got, want)
		}
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriterLogsJSONOutsideLocal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter("production", "info", &buf)
	if err != nil {
		t.Fatalf("unexpected logger error: %v", err)
	}
	logger.Debug().Msg("hidden")
	logger.Info().Str("source", "gbny").Msg("collected")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q", lines[0])
	}
	if entry["service"] != "briloai" || entry["source"] != "gbny" || entry["message"] != "collected" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestNewWithWriterUsesConsoleWriterLocally(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter("local", "debug", &buf)
	if err != nil {
		t.Fatalf("unexpected logger error: %v", err)
	}
	logger.Debug().Msg("scrape started")
	if out := buf.String(); strings.HasPrefix(strings.TrimSpace(out), "{") || !strings.Contains(out, "scrape started") {
		t.Fatalf("expected console output, got %q", out)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("local", "chatty"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestConfigureWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ConfigureWriter(&buf, "info", true); err != nil {
		t.Fatalf("ConfigureWriter: %v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Str("file", "week1.csv").Msg("imported")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1:\n%s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if entry["message"] != "imported" || entry["file"] != "week1.csv" {
		t.Errorf("entry = %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestConfigureWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	if err := ConfigureWriter(&buf, "debug", false); err != nil {
		t.Fatalf("ConfigureWriter: %v", err)
	}
	log.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestConfigureRejectsBadLevel(t *testing.T) {
	if err := ConfigureWriter(&bytes.Buffer{}, "loud", false); err == nil {
		t.Fatal("expected error")
	}
}

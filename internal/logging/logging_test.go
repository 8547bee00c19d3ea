package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Azure/azure-ai-cli-sub003/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}
}

func TestNew_JSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closeFn, err := New(Options{Level: "info", Format: "json", Stderr: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer closeFn()

	log.Debug("hidden")
	log.Info("parsed", "command", "chat")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d records, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "parsed" || rec["command"] != "chat" {
		t.Errorf("record = %v", rec)
	}
}

func TestNew_DebugForcesLevel(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(Options{Level: "error", Format: "text", Debug: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	log.Debug("visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Errorf("debug record missing: %q", buf.String())
	}
}

func TestNew_RotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai.log")
	log, closeFn, err := New(Options{Level: "info", Format: "json", File: path, MaxSizeMB: 1, MaxFiles: 1})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	log.Info("to file")
	if err := closeFn(); err != nil {
		t.Fatalf("close error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to file"`) {
		t.Errorf("log file = %q", data)
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Error("unknown format accepted")
	}
	if _, _, err := New(Options{Level: "chatty"}); err == nil {
		t.Error("unknown level accepted")
	}
}

func TestFromConfig(t *testing.T) {
	c := config.DefaultConfig().Logging
	c.File = "x.log"
	o := FromConfig(c)
	if o.Level != "warn" || o.File != "x.log" || o.MaxSizeMB != 10 || o.MaxFiles != 3 {
		t.Errorf("FromConfig() = %+v", o)
	}
}

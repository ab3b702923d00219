package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestSetup_ConfigErrorLoggedAsJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("screen:\n  width: 0\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var buf bytes.Buffer
	if _, err := setup(&buf, path); err == nil {
		t.Fatal("expected error for zero screen width")
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "failed to load config" || entry["level"] != "ERROR" {
		t.Errorf("unexpected log entry %v", entry)
	}
}

func TestSetup_Defaults(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	cfg, err := setup(&buf, "")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if cfg.Screen.Width <= 0 {
		t.Errorf("Screen.Width = %d, want positive default", cfg.Screen.Width)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}

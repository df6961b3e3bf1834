package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAuditLogger_Log(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test_audit.jsonl")

	lg, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = lg.Close()
	}()

	event := QueryEvent{
		Timestamp:  "2026-02-02T12:00:00Z",
		ID:         "11111111-2222-3333-4444-555555555555",
		Query:      "what is the capital of france?",
		Intent:     "FACTUAL",
		Source:     "WEB_SEARCH",
		UsedSearch: true,
		Confidence: 0.85,
		ElapsedMS:  412,
	}

	if err := lg.Log(event); err != nil {
		t.Fatalf("failed to log event: %v", err)
	}

	_ = lg.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	var parsed QueryEvent
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("failed to parse log line as JSON: %v", err)
	}

	if parsed.Query != "what is the capital of france?" {
		t.Errorf("expected query round-trip, got '%s'", parsed.Query)
	}

	if parsed.Source != "WEB_SEARCH" {
		t.Errorf("expected source 'WEB_SEARCH', got '%s'", parsed.Source)
	}
}

func TestAuditLogger_RedactsSecrets(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "audit.jsonl")

	lg, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = lg.Close() }()

	event := QueryEvent{
		ID:     "id",
		Query:  "my key is sk-ant-REDACTED",
		Intent: "CONVERSATIONAL",
		Source: "INTERNAL_LLM",
		Errors: []string{"auth failed for sk-ant-REDACTED"},
	}
	if err := lg.Log(event); err != nil {
		t.Fatalf("failed to log event: %v", err)
	}
	_ = lg.Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if strings.Contains(string(data), "sk-ant-abc123") {
		t.Error("api key leaked into audit log")
	}
	if !strings.Contains(string(data), "[REDACTED]") {
		t.Error("expected redaction marker in audit log")
	}
}

func TestAuditLogger_Rotation(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "audit.jsonl")

	// Pre-create the log file already at the rotation limit.
	big := make([]byte, defaultMaxLogBytes)
	if err := os.WriteFile(logPath, big, 0600); err != nil {
		t.Fatalf("failed to seed large log file: %v", err)
	}

	lg, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = lg.Close() }()

	event := QueryEvent{
		Timestamp: "2026-03-01T00:00:00Z",
		ID:        "id",
		Query:     "hello",
		Intent:    "CONVERSATIONAL",
		Source:    "INTERNAL_LLM",
	}
	if err := lg.Log(event); err != nil {
		t.Fatalf("Log after rotation failed: %v", err)
	}

	// .1 backup must exist
	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Errorf("expected rotated file %s.1 to exist: %v", logPath, err)
	}

	// Fresh log must be small (just the one new line)
	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("fresh log file missing: %v", err)
	}
	if info.Size() >= defaultMaxLogBytes {
		t.Errorf("fresh log file is still %d bytes; expected < %d", info.Size(), defaultMaxLogBytes)
	}
}

func TestAuditLogger_FilePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "secure_audit.jsonl")

	lg, err := New(logPath)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	_ = lg.Close()

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("failed to stat log file: %v", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("expected file permissions 0600, got %04o", perm)
	}
}

package logger

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"jarvisd/internal/redact"
)

// QueryEvent is one routed query, written as a JSONL record to the
// audit log.
type QueryEvent struct {
	Timestamp    string   `json:"timestamp"`
	ID           string   `json:"id"`
	Query        string   `json:"query"`
	Intent       string   `json:"intent"`
	Source       string   `json:"source"`
	Category     string   `json:"category,omitempty"`
	SignatureID  string   `json:"signature_id,omitempty"`
	UsedSearch   bool     `json:"used_search"`
	SearchFailed bool     `json:"search_failed,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	Confidence   float64  `json:"confidence"`
	Errors       []string `json:"errors,omitempty"`
	ElapsedMS    int64    `json:"elapsed_ms"`
}

// defaultMaxLogBytes is the rotation threshold: when the log reaches
// this size the current file is renamed to <path>.1 and a fresh file
// is opened.
const defaultMaxLogBytes = 10 << 20

// AuditLogger appends query events to a JSONL file. Safe for
// concurrent use.
type AuditLogger struct {
	path string
	file *os.File
	size int64
	mu   sync.Mutex
}

func New(path string) (*AuditLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	return &AuditLogger{path: path, file: file, size: info.Size()}, nil
}

func (l *AuditLogger) Log(event QueryEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size >= defaultMaxLogBytes {
		if err := l.rotate(); err != nil {
			return err
		}
	}

	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	// Redact sensitive data before logging
	event.Query = redact.Redact(event.Query)
	event.Errors = redact.RedactAll(event.Errors)

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	n, err := l.file.Write(data)
	l.size += int64(n)
	return err
}

// rotate renames the current log to <path>.1, replacing any previous
// backup, and opens a fresh file.
func (l *AuditLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(l.path, l.path+".1"); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	l.file = file
	l.size = 0
	return nil
}

func (l *AuditLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

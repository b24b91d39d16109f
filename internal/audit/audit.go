// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit appends pipeline decisions to a JSON-lines log for human
// review. The pipeline has human-in-the-loop checkpoints, so every merge
// decision, conflict resolution, skipped suggestion, and batch retry is
// recorded rather than silently applied.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one audit record. Kind identifies the decision type; Fields
// carry the decision-specific details.
type Entry struct {
	Time   time.Time      `json:"time"`
	RunID  string         `json:"run_id"`
	Kind   string         `json:"kind"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Entry kinds written by the pipeline.
const (
	KindRunStart           = "run_start"
	KindRunComplete        = "run_complete"
	KindRecordMerged       = "record_merged"
	KindIdentifierConflict = "identifier_conflict"
	KindSuggestionSkipped  = "suggestion_skipped"
	KindKeywordMerged      = "keyword_merged"
	KindBatchRetry         = "batch_retry"
	KindDatabaseWiped      = "database_wiped"
)

// Log is an append-only JSONL audit log. All methods are safe on a nil
// receiver so callers can run without auditing in tests.
type Log struct {
	mu    sync.Mutex
	f     *os.File
	enc   *json.Encoder
	runID string
}

// Open appends to the audit log at path, creating parent directories as
// needed, and records a run_start entry carrying a fresh run id.
func Open(path, command string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log %s: %w", path, err)
	}

	l := &Log{
		f:     f,
		enc:   json.NewEncoder(f),
		runID: uuid.NewString(),
	}
	l.Record(KindRunStart, map[string]any{"command": command})
	return l, nil
}

// RunID returns the identifier of the current run.
func (l *Log) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// Record appends one entry. Write failures are reported on stderr but do
// not abort the pipeline; the audit log is advisory, not transactional.
func (l *Log) Record(kind string, fields map[string]any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Time:   time.Now().UTC(),
		RunID:  l.runID,
		Kind:   kind,
		Fields: fields,
	}
	if err := l.enc.Encode(entry); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit write failed: %v\n", err)
	}
}

// Close records a run_complete entry and closes the underlying file.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.Record(KindRunComplete, nil)
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline tracks per-stage artifact state so expensive stage
// outputs are reused across runs: a stage is fresh when the fingerprint
// of its inputs matches what the last successful run recorded.
package pipeline

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "pipeline.db"

// Store records stage completion state in a SQLite database under the
// data directory.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the stage-state database in dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS stage_status (
		stage TEXT PRIMARY KEY,
		input_fingerprint TEXT NOT NULL,
		output_path TEXT,
		run_id TEXT,
		completed_at TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Fresh reports whether stage completed with the given input fingerprint
// and its recorded output artifact still exists.
func (s *Store) Fresh(ctx context.Context, stage, fingerprint string) (bool, error) {
	var storedFingerprint, outputPath string
	err := s.db.QueryRowContext(ctx,
		`SELECT input_fingerprint, output_path FROM stage_status WHERE stage = ?`, stage,
	).Scan(&storedFingerprint, &outputPath)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying stage status: %w", err)
	}
	if storedFingerprint != fingerprint {
		return false, nil
	}
	if outputPath != "" {
		if _, err := os.Stat(outputPath); err != nil {
			return false, nil
		}
	}
	return true, nil
}

// Complete records a successful stage run.
func (s *Store) Complete(ctx context.Context, stage, fingerprint, outputPath, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stage_status (stage, input_fingerprint, output_path, run_id, completed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(stage) DO UPDATE SET
			input_fingerprint=excluded.input_fingerprint,
			output_path=excluded.output_path,
			run_id=excluded.run_id,
			completed_at=excluded.completed_at`,
		stage, fingerprint, outputPath, runID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording stage completion: %w", err)
	}
	return nil
}

// Fingerprint hashes the contents of the given input files into one
// stable hex digest. Paths are sorted first, so argument order does not
// matter; a missing input contributes its path only.
func Fingerprint(paths ...string) (string, error) {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	h := sha256.New()
	for _, path := range sorted {
		io.WriteString(h, path)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("opening %s: %w", path, err)
		}
		if _, err := io.Copy(h, f); err != nil {
			f.Close()
			return "", fmt.Errorf("hashing %s: %w", path, err)
		}
		f.Close()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

package upload

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB remembers which export files were already sent so unchanged files
// are not uploaded twice.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	// Uploads run concurrently; SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sent_exports (
		path     TEXT PRIMARY KEY,
		size     INTEGER NOT NULL,
		hash     TEXT NOT NULL,
		workouts INTEGER NOT NULL DEFAULT 0,
		sent_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsSent reports whether relPath was already sent with the same size and hash.
func (s *StateDB) IsSent(ctx context.Context, relPath string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sent_exports WHERE path = ? AND size = ? AND hash = ?`,
		relPath, size, hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", relPath, err)
	}
	return count > 0, nil
}

// MarkSent records a successful upload of relPath.
func (s *StateDB) MarkSent(ctx context.Context, relPath string, size int64, hash string, workouts int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sent_exports (path, size, hash, workouts) VALUES (?, ?, ?, ?)`,
		relPath, size, hash, workouts,
	)
	if err != nil {
		return fmt.Errorf("marking %s: %w", relPath, err)
	}
	return nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

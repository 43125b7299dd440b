package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements storage.Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and runs migrations.
// Use ":memory:" for an in-memory database (useful for testing).
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) LoadCode(ctx context.Context, roomID string) (string, bool, error) {
	var code string
	row := s.db.QueryRowContext(ctx, `SELECT code FROM rooms WHERE room_id = ?`, roomID)
	if err := row.Scan(&code); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("querying room: %w", err)
	}
	return code, true, nil
}

func (s *SQLiteStore) SaveCode(ctx context.Context, roomID string, code string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (room_id, code, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET code = excluded.code, updated_at = excluded.updated_at`,
		roomID, code, now,
	)
	if err != nil {
		return fmt.Errorf("saving room code: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

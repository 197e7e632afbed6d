package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"safetyhub/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS safety_logs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	text       TEXT NOT NULL,
	category   TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
)`

// SQLiteStore keeps entries in a local SQLite database.
// A single connection serializes writers.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

// NewSQLiteStore opens (or creates) the database at path
func NewSQLiteStore(ctx context.Context, path string, logger *log.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create safety_logs table: %w", err)
	}

	logger.Printf("SQLite log store ready at %s", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Append inserts one row
func (s *SQLiteStore) Append(ctx context.Context, entry models.LogEntry) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO safety_logs (text, category) VALUES (?, ?)`, entry.Text, entry.Category); err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}
	return nil
}

// AppendBatch inserts all rows in one transaction
func (s *SQLiteStore) AppendBatch(ctx context.Context, entries []models.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO safety_logs (text, category) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Text, e.Category); err != nil {
			return fmt.Errorf("failed to insert log entry %d of %d: %w", i+1, len(entries), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit log entries: %w", err)
	}
	return nil
}

// List returns all rows ordered by id
func (s *SQLiteStore) List(ctx context.Context) ([]models.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT text, category FROM safety_logs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query log entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LogEntry, 0)
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.Text, &e.Category); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptLog, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log entries: %w", err)
	}
	return entries, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	s.logger.Println("Closing SQLite log store...")
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)

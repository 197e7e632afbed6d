package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"safetyhub/config"
	"safetyhub/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS safety_logs (
	id         BIGSERIAL PRIMARY KEY,
	text       TEXT        NOT NULL,
	category   TEXT        NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const postgresInsert = `INSERT INTO safety_logs (text, category) VALUES ($1, $2)`

// PostgresStore keeps entries in the safety_logs table; id order is append order
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgresStore connects a pool and makes sure the table exists
func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig, logger *log.Logger) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolCfg.MinConns = int32(cfg.MinConnections)
	}
	maxIdle, maxLifetime := cfg.Durations()
	if maxIdle > 0 {
		poolCfg.MaxConnIdleTime = maxIdle
	}
	if maxLifetime > 0 {
		poolCfg.MaxConnLifetime = maxLifetime
	}

	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create safety_logs table: %w", err)
	}

	logger.Printf("Postgres log store connected (max_conns=%d, min_conns=%d)", poolCfg.MaxConns, poolCfg.MinConns)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// Append inserts one row
func (s *PostgresStore) Append(ctx context.Context, entry models.LogEntry) error {
	if _, err := s.pool.Exec(ctx, postgresInsert, entry.Text, entry.Category); err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}
	return nil
}

// AppendBatch inserts all rows in one transaction using a pgx batch
func (s *PostgresStore) AppendBatch(ctx context.Context, entries []models.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(postgresInsert, e.Text, e.Category)
	}
	br := tx.SendBatch(ctx, batch)
	for i := range entries {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert log entry %d of %d: %w", i+1, len(entries), err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close insert batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit log entries: %w", err)
	}
	return nil
}

// List returns all rows ordered by id
func (s *PostgresStore) List(ctx context.Context) ([]models.LogEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT text, category FROM safety_logs ORDER BY id`)
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

// Close closes the pool
func (s *PostgresStore) Close() error {
	s.logger.Println("Closing Postgres log store...")
	s.pool.Close()
	return nil
}

var _ Store = (*PostgresStore)(nil)

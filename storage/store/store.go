// Package store persists saved log entries in append order.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"safetyhub/config"
	"safetyhub/internal/models"
)

// ErrCorruptLog means persisted entries exist but could not be decoded.
// It is never returned for a log that simply has no entries yet.
var ErrCorruptLog = errors.New("log store is corrupt")

// Store is an append-only, ordered collection of log entries
type Store interface {
	// Append adds one entry at the end of the log
	Append(ctx context.Context, entry models.LogEntry) error

	// AppendBatch adds entries in order, all or nothing where the backend allows it
	AppendBatch(ctx context.Context, entries []models.LogEntry) error

	// List returns every entry, oldest first. An empty log yields an empty, non-nil slice.
	List(ctx context.Context) ([]models.LogEntry, error)

	// Close releases the backend
	Close() error
}

// Open creates the store selected by cfg.Driver
func Open(ctx context.Context, cfg config.LogStoreConfig, logger *log.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileStore(cfg.Path, logger)
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath, logger)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.Database, logger)
	default:
		return nil, fmt.Errorf("unsupported log store driver: %s", cfg.Driver)
	}
}

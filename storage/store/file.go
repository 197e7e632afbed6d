package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"safetyhub/internal/models"
)

// FileStore keeps entries as newline-delimited JSON in one file.
// Appends are serialized and each entry is written with a single write call.
type FileStore struct {
	path   string
	logger *log.Logger
	mu     sync.RWMutex
}

// NewFileStore prepares a store at path. The file itself is created on first append.
func NewFileStore(path string, logger *log.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}
	logger.Printf("File log store ready at %s", path)
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the backing file
func (s *FileStore) Path() string { return s.path }

// Append writes one entry as a JSON line
func (s *FileStore) Append(ctx context.Context, entry models.LogEntry) error {
	return s.AppendBatch(ctx, []models.LogEntry{entry})
}

// AppendBatch encodes all entries up front, then writes them in one call
func (s *FileStore) AppendBatch(ctx context.Context, entries []models.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i := range entries {
		// Encode terminates every value with '\n'
		if err := enc.Encode(&entries[i]); err != nil {
			return fmt.Errorf("failed to encode log entry: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", s.path, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to log file %s: %w", s.path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync log file %s: %w", s.path, err)
	}
	return f.Close()
}

// List reads the whole file. A missing file is an empty log; a malformed line is ErrCorruptLog.
func (s *FileStore) List(ctx context.Context) ([]models.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.LogEntry, 0)

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to open log file %s: %w", s.path, err)
	}
	defer f.Close()

	// No line cap: whatever AppendBatch encoded must be readable again
	reader := bufio.NewReader(f)
	lineNo := 0
	for {
		raw, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("failed to read log file %s at line %d: %w", s.path, lineNo+1, readErr)
		}
		if len(raw) > 0 {
			lineNo++
			if line := bytes.TrimSpace(raw); len(line) > 0 {
				var entry models.LogEntry
				if err := json.Unmarshal(line, &entry); err != nil {
					s.logger.Printf("File log store: malformed entry at %s:%d: %v", s.path, lineNo, err)
					return nil, fmt.Errorf("%w: line %d: %v", ErrCorruptLog, lineNo, err)
				}
				entries = append(entries, entry)
			}
		}
		if readErr != nil {
			break
		}
	}
	return entries, nil
}

// Close is a no-op; the file is opened per operation
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)

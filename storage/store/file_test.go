package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safetyhub/internal/models"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "logs.json"), testLogger())
	require.NoError(t, err)
	return s
}

func TestFileStore(t *testing.T) {
	exerciseStore(t, newTestFileStore(t))
}

func TestFileStore_ConcurrentAppends(t *testing.T) {
	exerciseConcurrentAppends(t, newTestFileStore(t))
}

func TestFileStore_WritesOneJSONObjectPerLine(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, models.LogEntry{Text: "hello", Category: "note"}))
	require.NoError(t, s.Append(ctx, models.LogEntry{Text: "a<b", Category: "x"}))

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "{\"text\":\"hello\",\"category\":\"note\"}\n{\"text\":\"a<b\",\"category\":\"x\"}\n", string(raw))
}

func TestFileStore_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "logs.json")
	s, err := NewFileStore(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Append(context.Background(), models.LogEntry{Text: "t", Category: "c"}))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFileStore_EmptyPath(t *testing.T) {
	_, err := NewFileStore("", testLogger())
	assert.Error(t, err)
}

func TestFileStore_SkipsBlankLines(t *testing.T) {
	s := newTestFileStore(t)
	content := "{\"text\":\"a\",\"category\":\"1\"}\n\n   \n{\"text\":\"b\",\"category\":\"2\"}\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.LogEntry{{Text: "a", Category: "1"}, {Text: "b", Category: "2"}}, entries)
}

func TestFileStore_CorruptLine(t *testing.T) {
	s := newTestFileStore(t)
	content := "{\"text\":\"a\",\"category\":\"1\"}\n{not json\n{\"text\":\"b\",\"category\":\"2\"}\n"
	require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o644))

	entries, err := s.List(context.Background())
	assert.Nil(t, entries)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptLog))
	assert.Contains(t, err.Error(), "line 2")
}

func TestFileStore_CancelledContext(t *testing.T) {
	s := newTestFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Append(ctx, models.LogEntry{Text: "t"}), context.Canceled)
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore_LargeReencodedEntryStaysReadable(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	// U+2028 is escaped by encoding/json as \u2028 (six bytes), so this line exceeds 16 MiB on disk
	big := strings.Repeat("\u2028", 3<<20)
	require.NoError(t, s.Append(ctx, models.LogEntry{Text: big, Category: "big"}))
	require.NoError(t, s.Append(ctx, models.LogEntry{Text: "t1", Category: "c1"}))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(16<<20))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, len(big), len(entries[0].Text))
	assert.Equal(t, models.LogEntry{Text: "t1", Category: "c1"}, entries[1])
}

func TestFileStore_LastLineWithoutNewline(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{\"text\":\"a\",\"category\":\"1\"}\n{\"text\":\"b\",\"category\":\"2\"}"), 0o644))

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.LogEntry{{Text: "a", Category: "1"}, {Text: "b", Category: "2"}}, entries)
}

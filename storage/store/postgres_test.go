package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"safetyhub/config"
)

// postgresDSNEnv points the postgres tests at a disposable database
const postgresDSNEnv = "SAFETYHUB_TEST_POSTGRES_DSN"

func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", postgresDSNEnv)
	}

	ctx := context.Background()
	cfg := config.DatabaseConfig{DSN: dsn}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	s, err := NewPostgresStore(ctx, cfg, testLogger())
	require.NoError(t, err)
	_, err = s.pool.Exec(ctx, `TRUNCATE safety_logs RESTART IDENTITY`)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore(t *testing.T) {
	exerciseStore(t, newTestPostgresStore(t))
}

func TestPostgresStore_ConcurrentAppends(t *testing.T) {
	exerciseConcurrentAppends(t, newTestPostgresStore(t))
}

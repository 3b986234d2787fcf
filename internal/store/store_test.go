package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tareas-web/appserver/config"
	"github.com/tareas-web/appserver/internal/db"
)

// newTestDB opens a fresh in-memory sqlite store with the schema
// bootstrapped, exactly as the dev mode does.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), config.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// setCreatedAt backdates a task so ordering tests do not depend on
// insert timing.
func setCreatedAt(t *testing.T, conn *sql.DB, taskID int, at time.Time) {
	t.Helper()

	_, err := conn.ExecContext(context.Background(),
		`UPDATE tasks SET created_at = $1 WHERE id = $2`, at, taskID)
	require.NoError(t, err)
}

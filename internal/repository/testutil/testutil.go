package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"relay/backend/internal/db"
	"relay/backend/internal/snowflake"
)

// NewTestDB opens a migrated sqlite database in a temp dir and closes it on cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	require.NoError(t, snowflake.Init(1))

	database, err := db.Open(filepath.Join(t.TempDir(), "relay-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// SeedMessage inserts a message with an explicit creation time.
func SeedMessage(t *testing.T, database *sql.DB, text string, createdAt time.Time) int64 {
	t.Helper()
	id := snowflake.NextID()
	_, err := database.Exec(
		`INSERT INTO messages (id, message, created_at) VALUES (?, ?, ?)`,
		id, text, createdAt.UTC().Format("2006-01-02T15:04:05.000000000Z07:00"),
	)
	require.NoError(t, err)
	return id
}

// Package dbtest opens throwaway SQLite databases with the schema applied.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Dosada05/team-hub/db"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// Open creates a migrated SQLite database in a temporary directory that is
// removed when the test finishes.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	url := "sqlite://" + filepath.Join(t.TempDir(), "team-hub-test.db")
	conn, err := db.Connect(url, 5*time.Second)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(conn), "failed to apply migrations")
	return conn
}

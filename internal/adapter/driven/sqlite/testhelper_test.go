package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestDB opens a migrated in-memory database private to t. Both
// connection pools attach to the same named shared-cache database.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", url.PathEscape(t.Name()))

	open := func(maxConns int) *sql.DB {
		conn, err := sql.Open("sqlite", dsn)
		require.NoError(t, err)
		conn.SetMaxOpenConns(maxConns)
		t.Cleanup(func() { _ = conn.Close() })
		require.NoError(t, conn.Ping())
		return conn
	}

	// The writer opens first so the shared database outlives every reader.
	db := &DB{Writer: open(1), Reader: open(4), path: t.Name()}

	_, err := Migrate(db)
	require.NoError(t, err)
	return db
}

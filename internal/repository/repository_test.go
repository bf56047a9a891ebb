package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/grassly/grassly/internal/database"
)

// testCost keeps bcrypt cheap in tests.
const testCost = 4

// openTestDB gives each test its own in-memory database with the full
// schema applied.  The single-connection pool in database.Open keeps the
// memory database alive for the test's duration.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}

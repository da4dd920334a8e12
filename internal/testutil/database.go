// Package testutil provides testing utilities for database-backed tests.
//
// Repository and use case tests run against an in-memory sqlite database with
// every embedded migration applied:
//
//	db := testutil.SetupSQLiteDB(t)
//
// Each call gets its own named shared-cache database, so parallel tests never see
// each other's rows. The connection is closed through t.Cleanup.
package testutil

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/allisson/rewardsync/internal/database"
)

// SQLiteMemoryDSN returns a DSN for a private in-memory sqlite database.
func SQLiteMemoryDSN() string {
	return fmt.Sprintf("file:test_%s?mode=memory&cache=shared", uuid.NewString())
}

// SetupSQLiteDB opens a fresh in-memory sqlite database and runs migrations.
func SetupSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Connect(database.Config{
		Driver:             database.DriverSQLite,
		ConnectionString:   SQLiteMemoryDSN(),
		MaxIdleConnections: 1,
		ConnMaxLifetime:    time.Hour,
	})
	require.NoError(t, err, "failed to open sqlite database")

	require.NoError(t, database.Migrate(db, database.DriverSQLite), "failed to run sqlite migrations")

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

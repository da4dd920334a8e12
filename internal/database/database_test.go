package database

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_UnknownDriver(t *testing.T) {
	db, err := Connect(Config{Driver: "oracle", ConnectionString: "scott/tiger"})

	assert.Nil(t, db)
	assert.ErrorContains(t, err, "failed to open oracle database")
	assert.ErrorContains(t, err, "sql: unknown driver")
}

func TestConnect_SQLiteSingleWriterWithPragmas(t *testing.T) {
	db, err := Connect(Config{
		Driver:             DriverSQLite,
		ConnectionString:   "file:connect_test?mode=memory&cache=shared",
		MaxOpenConnections: 10,
		MaxIdleConnections: 1,
		ConnMaxLifetime:    time.Minute,
	})
	require.NoError(t, err)
	defer db.Close() //nolint:errcheck

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	var busyTimeout, foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 5000, busyTimeout)
	assert.Equal(t, 1, foreignKeys)
}

func TestWithSQLitePragmas(t *testing.T) {
	t.Run("KeepsExistingParams", func(t *testing.T) {
		dsn := withSQLitePragmas("file:device.db?mode=rwc")
		base, rawQuery, ok := strings.Cut(dsn, "?")
		require.True(t, ok)
		assert.Equal(t, "file:device.db", base)

		query, err := url.ParseQuery(rawQuery)
		require.NoError(t, err)
		assert.Equal(t, "rwc", query.Get("mode"))
		assert.ElementsMatch(t, sqlitePragmas, query["_pragma"])
	})

	t.Run("CallerPragmaWins", func(t *testing.T) {
		dsn := withSQLitePragmas("device.db?_pragma=busy_timeout(100)")
		query, err := url.ParseQuery(strings.SplitN(dsn, "?", 2)[1])
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"busy_timeout(100)", "foreign_keys(1)"}, query["_pragma"])
	})

	t.Run("BareFile", func(t *testing.T) {
		assert.Contains(t, withSQLitePragmas("device.db"), "device.db?_pragma=")
	})
}

// Package database opens the on-device store and carries the transaction and
// migration helpers the repositories share.
package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported values for Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// sqlitePragmas are applied to every sqlite connection the pool opens.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"foreign_keys(1)",
}

// Config selects the driver and sizes the pool.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// Connect opens and pings the store. A sqlite store gets a single connection,
// since the answer and upload processors would otherwise contend for the
// write lock.
func Connect(cfg Config) (*sql.DB, error) {
	dsn, maxOpen := cfg.ConnectionString, cfg.MaxOpenConnections
	if cfg.Driver == DriverSQLite {
		dsn, maxOpen = withSQLitePragmas(dsn), 1
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach %s database: %w", cfg.Driver, err)
	}
	return db, nil
}

// withSQLitePragmas appends the connection pragmas the DSN does not already set.
func withSQLitePragmas(dsn string) string {
	base, rawQuery, _ := strings.Cut(dsn, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return dsn
	}

	set := make(map[string]bool)
	for _, p := range query["_pragma"] {
		name, _, _ := strings.Cut(p, "(")
		set[strings.ToLower(name)] = true
	}
	for _, p := range sqlitePragmas {
		name, _, _ := strings.Cut(p, "(")
		if !set[name] {
			query.Add("_pragma", p)
		}
	}
	return base + "?" + query.Encode()
}

package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/allisson/rewardsync/migrations"
)

// MigrationsDir returns the embedded migrations directory for a driver.
func MigrationsDir(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite", nil
	case DriverPostgres:
		return "postgresql", nil
	case DriverMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Migrate applies every pending embedded migration for driver on db.
// The connection stays open; callers keep ownership of db.
func Migrate(db *sql.DB, driver string) error {
	dir, err := MigrationsDir(driver)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	defer source.Close() //nolint:errcheck

	var instance migratedb.Driver
	switch driver {
	case DriverSQLite:
		instance, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DriverPostgres:
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverMySQL:
		instance, err = mysql.WithInstance(db, &mysql.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

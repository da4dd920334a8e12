package commands

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/allisson/rewardsync/internal/database"
)

// RunMigrations applies the embedded migrations of driver on db.
// Returns nil when the schema is already current.
func RunMigrations(logger *slog.Logger, db *sql.DB, driver string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	if err := database.Migrate(db, driver); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

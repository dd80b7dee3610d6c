package commands

import (
	"database/sql"
	"log/slog"

	"github.com/allisson/keyvault/internal/database"
)

// RunMigrations applies the embedded migrations of driver to db. It returns nil when
// there is nothing to apply.
func RunMigrations(logger *slog.Logger, db *sql.DB, driver string) error {
	logger.Info("running database migrations", slog.String("driver", driver))

	if err := database.Migrate(db, driver); err != nil {
		return err
	}

	logger.Info("migrations completed successfully")
	return nil
}

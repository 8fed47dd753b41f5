package app

import (
	"fmt"

	"research-hub/internal/common/logging"
	"research-hub/internal/storage/sqlc"
)

func (app *App) initializeStorage() error {
	if app.Config.IsPostgres() {
		app.Logger.Info("Database: PostgreSQL",
			logging.String("host", app.Config.PostgresHost),
			logging.String("port", app.Config.PostgresPort),
			logging.String("database", app.Config.PostgresDB),
		)
	} else {
		app.Logger.Info("Database: SQLite", logging.String("path", app.Config.DatabasePath))
	}

	store, err := sqlc.NewSQLCStorage(app.Config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.Storage = store
	return nil
}

package sqlc

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"research-hub/internal/config"
	"research-hub/internal/storage"
)

const migrationTimeout = 30 * time.Second

// NewSQLCStorage opens the database selected by cfg and migrates it
func NewSQLCStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.DatabaseType {
	case "sqlite":
		return OpenSQLite(&SQLiteConfig{DatabasePath: cfg.DatabasePath})

	case "postgres", "postgresql":
		port, err := strconv.Atoi(cfg.PostgresPort)
		if err != nil {
			return nil, fmt.Errorf("invalid PostgreSQL port %q: %w", cfg.PostgresPort, err)
		}
		return OpenPostgres(&PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     port,
			Database: cfg.PostgresDB,
			Username: cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			SSLMode:  cfg.PostgresSSLMode,
		})

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}
}

// OpenSQLite opens and migrates a SQLite database
func OpenSQLite(c *SQLiteConfig) (*SQLCAdapter, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", c.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	return newAdapter(db, DialectSQLite)
}

// OpenPostgres connects to and migrates a PostgreSQL database through the
// pgx database/sql driver
func OpenPostgres(c *PostgresConfig) (*SQLCAdapter, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	connConfig, err := pgx.ParseConfig(c.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL connection settings: %w", err)
	}

	db := stdlib.OpenDB(*connConfig)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return newAdapter(db, DialectPostgres)
}

func newAdapter(db *sql.DB, dialect Dialect) (*SQLCAdapter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return NewSQLCAdapter(db, dialect), nil
}

package sqlc

import (
	"fmt"
	"net/url"
	"strconv"
)

// SQLiteConfig configures the SQLite backend
type SQLiteConfig struct {
	DatabasePath string
}

func (c *SQLiteConfig) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

func (c *SQLiteConfig) GetType() string {
	return "sqlite"
}

// GetConnectionString enables foreign keys, waits on a busy database and
// opens write transactions IMMEDIATE so concurrent lockout updates serialize.
func (c *SQLiteConfig) GetConnectionString() string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", c.DatabasePath)
}

// PostgresConfig configures the PostgreSQL backend
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

func (c *PostgresConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("PostgreSQL host is required")
	}

	if c.Port <= 0 {
		c.Port = 5432
	}

	if c.Database == "" {
		return fmt.Errorf("PostgreSQL database name is required")
	}

	if c.Username == "" {
		return fmt.Errorf("PostgreSQL username is required")
	}

	if c.SSLMode == "" {
		c.SSLMode = "prefer"
	}

	return nil
}

func (c *PostgresConfig) GetType() string {
	return "postgres"
}

func (c *PostgresConfig) GetConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

package storage

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"feirabairro/internal/config"
)

// SQLite runs against a local database file named by DB_NAME. Host, port,
// credentials and TLS settings do not apply.
type SQLite struct{}

// Name returns the DB_DRIVER value selecting this dialect.
func (SQLite) Name() string { return config.DriverSQLite }

// Open opens the database file, creating it when absent.
func (SQLite) Open(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.Name, err)
	}
	return singleConnection(db), nil
}

// VersionQuery returns the readiness query.
func (SQLite) VersionQuery() string { return `SELECT 'SQLite ' || sqlite_version()` }

// TablesQuery lists user tables by name.
func (SQLite) TablesQuery() string {
	return `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
}

// IsAlreadyExists falls back to the message: SQLite reports every schema
// conflict as the generic SQLITE_ERROR code.
func (SQLite) IsAlreadyExists(err error) bool {
	return messageSaysAlreadyExists(err)
}

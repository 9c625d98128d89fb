package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"feirabairro/internal/config"
)

// ErrUnsupportedDriver is returned by DialectFor for unknown driver names.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Dialect hides the differences between database backends: how to connect,
// which catalog queries to use and how to recognise benign conflicts.
type Dialect interface {
	Name() string
	Open(cfg config.Config) (*sql.DB, error)
	VersionQuery() string
	TablesQuery() string
	IsAlreadyExists(err error) bool
}

// DialectFor returns the dialect registered for driver.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return Postgres{}, nil
	case config.DriverMySQL:
		return MySQL{}, nil
	case config.DriverSQLite:
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// alreadyExistsText is matched when the driver error carries no usable code.
const alreadyExistsText = "already exists"

func messageSaysAlreadyExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), alreadyExistsText)
}

// singleConnection caps db so the whole run shares one connection.
func singleConnection(db *sql.DB) *sql.DB {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db
}

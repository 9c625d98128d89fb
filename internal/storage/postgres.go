package storage

import (
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"feirabairro/internal/config"
)

// duplicate_* SQLSTATEs from the 42 (syntax error or access rule violation) class.
var pgDuplicateCodes = map[string]struct{}{
	"42P04": {}, // duplicate_database
	"42P06": {}, // duplicate_schema
	"42P07": {}, // duplicate_table
	"42701": {}, // duplicate_column
	"42710": {}, // duplicate_object
	"42712": {}, // duplicate_alias
	"42723": {}, // duplicate_function
}

// Postgres talks to PostgreSQL through pgx.
type Postgres struct{}

// Name returns the DB_DRIVER value selecting this dialect.
func (Postgres) Name() string { return config.DriverPostgres }

// Open builds a pgx connection config and wraps it in database/sql.
func (Postgres) Open(cfg config.Config) (*sql.DB, error) {
	connCfg, err := pgConnConfig(cfg)
	if err != nil {
		return nil, err
	}
	return singleConnection(stdlib.OpenDB(*connCfg)), nil
}

func pgConnConfig(cfg config.Config) (*pgx.ConnConfig, error) {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=disable",
	}
	connCfg, err := pgx.ParseConfig(dsn.String())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	connCfg.ConnectTimeout = cfg.ConnectTimeout
	connCfg.Fallbacks = nil
	if cfg.SSL {
		connCfg.TLSConfig = &tls.Config{
			ServerName:         cfg.Host,
			InsecureSkipVerify: cfg.SSLInsecure,
			MinVersion:         tls.VersionTLS12,
		}
	}
	return connCfg, nil
}

// VersionQuery returns the readiness query.
func (Postgres) VersionQuery() string { return `SELECT version()` }

// TablesQuery lists the tables of the public schema by name.
func (Postgres) TablesQuery() string {
	return `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name
	`
}

// IsAlreadyExists trusts the SQLSTATE whenever the server sent one.
func (Postgres) IsAlreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := pgDuplicateCodes[pgErr.Code]
		return ok
	}
	return messageSaysAlreadyExists(err)
}

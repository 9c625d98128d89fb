package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"feirabairro/internal/config"
)

var mysqlDuplicateCodes = map[uint16]struct{}{
	1007: {}, // ER_DB_CREATE_EXISTS
	1050: {}, // ER_TABLE_EXISTS_ERROR
	1060: {}, // ER_DUP_FIELDNAME
	1061: {}, // ER_DUP_KEYNAME
	1304: {}, // ER_SP_ALREADY_EXISTS
	1359: {}, // ER_TRG_ALREADY_EXISTS
}

// MySQL talks to MySQL or MariaDB through go-sql-driver.
type MySQL struct{}

// Name returns the DB_DRIVER value selecting this dialect.
func (MySQL) Name() string { return config.DriverMySQL }

// Open wraps a go-sql-driver connector in database/sql.
func (MySQL) Open(cfg config.Config) (*sql.DB, error) {
	connector, err := mysql.NewConnector(mysqlConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("build mysql connector: %w", err)
	}
	return singleConnection(sql.OpenDB(connector)), nil
}

// mysqlConfig enables multi statements so a whole file can be sent in one
// Exec. Timeout bounds only the dial; the handshake is bounded by the
// context of the readiness check.
func mysqlConfig(cfg config.Config) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.MultiStatements = true
	mc.Timeout = cfg.ConnectTimeout
	switch cfg.TLSMode() {
	case config.TLSVerifyFull:
		mc.TLSConfig = "true"
	case config.TLSInsecure:
		mc.TLSConfig = "skip-verify"
	}
	return mc
}

// VersionQuery returns the readiness query.
func (MySQL) VersionQuery() string { return `SELECT VERSION()` }

// TablesQuery lists the tables of the connected database by name.
func (MySQL) TablesQuery() string {
	return `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		ORDER BY table_name
	`
}

// IsAlreadyExists trusts the server error number whenever there is one.
func (MySQL) IsAlreadyExists(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		_, ok := mysqlDuplicateCodes[myErr.Number]
		return ok
	}
	return messageSaysAlreadyExists(err)
}

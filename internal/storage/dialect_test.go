package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"feirabairro/internal/config"
)

func TestDialectFor(t *testing.T) {
	for _, driver := range []string{config.DriverPostgres, config.DriverMySQL, config.DriverSQLite} {
		d, err := DialectFor(driver)
		require.NoError(t, err)
		require.Equal(t, driver, d.Name())
	}

	_, err := DialectFor("oracle")
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestPostgresIsAlreadyExists(t *testing.T) {
	d := Postgres{}

	require.True(t, d.IsAlreadyExists(&pgconn.PgError{Code: "42P07", Message: `relation "stalls" already exists`}))
	require.True(t, d.IsAlreadyExists(fmt.Errorf("exec: %w", &pgconn.PgError{Code: "42710"})))
	// A structured code wins over the message text.
	require.False(t, d.IsAlreadyExists(&pgconn.PgError{Code: "23505", Detail: "Key (id)=(1) already exists."}))
	require.False(t, d.IsAlreadyExists(&pgconn.PgError{Code: "42601", Message: "already exists"}))
	// Without a code the message decides.
	require.True(t, d.IsAlreadyExists(errors.New(`type "stall_kind" already exists`)))
	require.False(t, d.IsAlreadyExists(errors.New("connection reset by peer")))
}

func TestMySQLIsAlreadyExists(t *testing.T) {
	d := MySQL{}

	require.True(t, d.IsAlreadyExists(&mysql.MySQLError{Number: 1050, Message: "Table 'stalls' already exists"}))
	require.True(t, d.IsAlreadyExists(&mysql.MySQLError{Number: 1061, Message: "Duplicate key name 'idx_stalls'"}))
	require.False(t, d.IsAlreadyExists(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1' for key 'PRIMARY'"}))
	require.True(t, d.IsAlreadyExists(errors.New("view already exists")))
}

func TestSQLiteIsAlreadyExists(t *testing.T) {
	d := SQLite{}

	require.True(t, d.IsAlreadyExists(errors.New("SQL logic error: table stalls already exists (1)")))
	require.False(t, d.IsAlreadyExists(errors.New("UNIQUE constraint failed: stalls.id")))
	require.False(t, d.IsAlreadyExists(nil))
}

func TestOpenUsesSingleConnection(t *testing.T) {
	cfg := config.Config{
		Driver: config.DriverPostgres, Host: "db.example", Port: 5432,
		Name: "feira_bairro", User: "feira_user", Password: "p@ss word",
		SSL: true, SSLInsecure: true, ConnectTimeout: time.Second,
	}

	for _, d := range []Dialect{Postgres{}, MySQL{}} {
		db, err := d.Open(cfg)
		require.NoError(t, err)
		require.Equalf(t, 1, db.Stats().MaxOpenConnections, "dialect %s", d.Name())
		require.NoError(t, db.Close())
	}
}

func tlsTestConfig() config.Config {
	return config.Config{
		Host: "db.example", Port: 5432, Name: "feira_bairro",
		User: "feira_user", Password: "feira_password", ConnectTimeout: 7 * time.Second,
	}
}

func TestPgConnConfigTLSModes(t *testing.T) {
	cfg := tlsTestConfig()
	connCfg, err := pgConnConfig(cfg)
	require.NoError(t, err)
	require.Nil(t, connCfg.TLSConfig)
	require.Equal(t, 7*time.Second, connCfg.ConnectTimeout)
	require.Equal(t, "db.example", connCfg.Host)
	require.Equal(t, uint16(5432), connCfg.Port)

	// The insecure switch alone does not turn TLS on.
	cfg.SSLInsecure = true
	connCfg, err = pgConnConfig(cfg)
	require.NoError(t, err)
	require.Nil(t, connCfg.TLSConfig)

	cfg.SSL, cfg.SSLInsecure = true, false
	connCfg, err = pgConnConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, connCfg.TLSConfig)
	require.False(t, connCfg.TLSConfig.InsecureSkipVerify)
	require.Equal(t, "db.example", connCfg.TLSConfig.ServerName)
	require.Empty(t, connCfg.Fallbacks)

	cfg.SSLInsecure = true
	connCfg, err = pgConnConfig(cfg)
	require.NoError(t, err)
	require.NotNil(t, connCfg.TLSConfig)
	require.True(t, connCfg.TLSConfig.InsecureSkipVerify)
}

func TestMySQLConfigTLSModes(t *testing.T) {
	cfg := tlsTestConfig()
	mc := mysqlConfig(cfg)
	require.Empty(t, mc.TLSConfig)
	require.Equal(t, 7*time.Second, mc.Timeout)
	require.Equal(t, "db.example:5432", mc.Addr)
	require.True(t, mc.MultiStatements)

	cfg.SSLInsecure = true
	require.Empty(t, mysqlConfig(cfg).TLSConfig)

	cfg.SSL, cfg.SSLInsecure = true, false
	require.Equal(t, "true", mysqlConfig(cfg).TLSConfig)

	cfg.SSLInsecure = true
	require.Equal(t, "skip-verify", mysqlConfig(cfg).TLSConfig)
}

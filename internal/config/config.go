package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// TLS modes reported by Config.TLSMode.
const (
	TLSDisabled   = "disabled"
	TLSVerifyFull = "verify-full"
	TLSInsecure   = "insecure"
)

const defaultConnectTimeout = 30 * time.Second

// Config holds runtime configuration.
type Config struct {
	Driver         string
	Host           string
	Port           int
	Name           string
	User           string
	Password       string
	SSL            bool
	SSLInsecure    bool
	ConnectTimeout time.Duration
	BaseDir        string
	LogLevel       string
}

// Load parses environment variables into Config. Unset variables fall back to
// local development defaults.
func Load() (Config, error) {
	cfg := Config{
		Driver:      getEnv("DB_DRIVER", DriverPostgres),
		Host:        getEnv("DB_HOST", "localhost"),
		Name:        getEnv("DB_NAME", "feira_bairro"),
		User:        getEnv("DB_USER", "feira_user"),
		Password:    getEnv("DB_PASSWORD", "feira_password"),
		SSL:         os.Getenv("DB_SSL") == "true",
		SSLInsecure: os.Getenv("DB_SSL_INSECURE") == "true",
		BaseDir:     os.Getenv("DB_MIGRATIONS_DIR"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	switch cfg.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("DB_DRIVER %q is not supported", cfg.Driver)
	}

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("DB_PORT must be a valid port number, got %q", os.Getenv("DB_PORT"))
	}
	cfg.Port = port

	cfg.ConnectTimeout = defaultConnectTimeout
	if raw := os.Getenv("DB_CONNECT_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return Config{}, fmt.Errorf("DB_CONNECT_TIMEOUT must be a positive duration, got %q", raw)
		}
		cfg.ConnectTimeout = timeout
	}

	if cfg.BaseDir == "" {
		dir, err := executableDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve program location: %w", err)
		}
		cfg.BaseDir = dir
	}

	return cfg, nil
}

// TLSMode describes how the transport is secured.
func (c Config) TLSMode() string {
	switch {
	case !c.SSL:
		return TLSDisabled
	case c.SSLInsecure:
		return TLSInsecure
	default:
		return TLSVerifyFull
	}
}

// Redacted returns the configuration summary shown to operators. The password
// is never included.
func (c Config) Redacted() []string {
	ssl := "disabled"
	if c.SSL {
		ssl = "enabled (" + c.TLSMode() + ")"
	}
	return []string{
		"Driver: " + c.Driver,
		"Host: " + c.Host,
		"Port: " + strconv.Itoa(c.Port),
		"Database: " + c.Name,
		"User: " + c.User,
		"SSL: " + ssl,
	}
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

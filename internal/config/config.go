// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the full service configuration.
type Config struct {
	Port      string        `env:"PORT" envDefault:"8080"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string        `env:"LOG_FORMAT" envDefault:"json"`
	Driver    string        `env:"STORE_DRIVER" envDefault:"postgres"`
	TxTimeout time.Duration `env:"TX_TIMEOUT" envDefault:"5s"`

	Postgres Postgres
	SQLite   SQLite
}

// Postgres holds PostgreSQL connection settings.
type Postgres struct {
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            string `env:"DB_PORT" envDefault:"5432"`
	User            string `env:"DB_USER" envDefault:"postgres"`
	Password        string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName          string `env:"DB_NAME" envDefault:"campusevents"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns        int32  `env:"DB_MAX_CONNS" envDefault:"20"`
	ConnectAttempts int    `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
}

// DSN builds a libpq-compatible connection string.
func (c Postgres) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// SQLite holds the embedded database settings.
type SQLite struct {
	Path string `env:"SQLITE_PATH" envDefault:"campus-events.db"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Driver)
	}
	if c.TxTimeout <= 0 {
		return fmt.Errorf("TX_TIMEOUT must be positive, got %s", c.TxTimeout)
	}
	if c.Driver == DriverSQLite && strings.TrimSpace(c.SQLite.Path) == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	if c.Driver == DriverPostgres && c.Postgres.ConnectAttempts < 1 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be at least 1")
	}
	return nil
}

// Package database opens the configured storage backend, applies its
// schema, and hands back a repository.Store.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/campus-events/internal/config"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository/postgres"
	"github.com/Shivanand-hulikatti/campus-events/internal/repository/sqlite"
)

// OpenStore connects to the backend selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := NewPool(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		if err := MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database: migrate: %w", err)
		}
		log.Info("connected to postgres", "host", cfg.Postgres.Host, "db", cfg.Postgres.DBName)
		return postgres.New(pool, postgres.WithTxTimeout(cfg.TxTimeout)), nil

	case config.DriverSQLite:
		db, err := OpenSQLite(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		log.Info("opened sqlite database", "path", cfg.SQLite.Path)
		return sqlite.New(db, sqlite.WithTxTimeout(cfg.TxTimeout)), nil

	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}
}

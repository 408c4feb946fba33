package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/config"
	"github.com/Shivanand-hulikatti/campus-events/internal/database/migrations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// retryDelay is the pause between connection attempts.
var retryDelay = 2 * time.Second

// migrationLockKey serialises concurrent migration runs across replicas.
const migrationLockKey = 727_001

// NewPool creates and validates a pgxpool connection pool.
// It retries to accommodate containers starting up.
func NewPool(ctx context.Context, cfg config.Postgres, log *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	return connect(ctx, poolCfg, cfg.MaxConns, cfg.ConnectAttempts, log)
}

// NewPoolFromURL is NewPool for a ready-made connection string.
func NewPoolFromURL(ctx context.Context, url string, log *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	return connect(ctx, poolCfg, 20, 1, log)
}

func connect(ctx context.Context, poolCfg *pgxpool.Config, maxConns int32, attempts int, log *slog.Logger) (*pgxpool.Pool, error) {
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var (
		pool *pgxpool.Pool
		err  error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		log.Warn("db connect attempt failed",
			"attempt", attempt, "max_attempts", attempts, "error", err)
		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("connect to postgres: %w", errors.Join(err, ctx.Err()))
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("connect to postgres: %w", err)
}

// MigratePostgres applies the embedded PostgreSQL schema.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	return applyMigrations(ctx, &pgMigrator{pool: pool}, migrations.Postgres, "postgres")
}

type pgMigrator struct {
	pool *pgxpool.Pool
}

func (m *pgMigrator) ensureTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+migrationTable+` (
		name       TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

func (m *pgMigrator) isApplied(ctx context.Context, name string) (bool, error) {
	var found int
	err := m.pool.QueryRow(ctx, `SELECT 1 FROM `+migrationTable+` WHERE name = $1`, name).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (m *pgMigrator) apply(ctx context.Context, name, upSQL string) error {
	return pgx.BeginFunc(ctx, m.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
			return fmt.Errorf("lock: %w", err)
		}
		if _, err := tx.Exec(ctx, upSQL); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO `+migrationTable+` (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
		return err
	})
}

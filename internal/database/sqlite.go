package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/database/migrations"
	_ "modernc.org/sqlite"
)

// sqliteParams enables WAL, foreign keys (for ON DELETE CASCADE) and a
// busy timeout, and makes read-write transactions start with
// BEGIN IMMEDIATE.
const sqliteParams = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)" +
	"&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)&_txlock=immediate"

// OpenSQLite opens the database file at path and applies the embedded
// migrations.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	db, err := sql.Open("sqlite", filepath.Clean(path)+sqliteParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := MigrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// MigrateSQLite applies the embedded SQLite schema.
func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	return applyMigrations(ctx, &sqliteMigrator{db: db}, migrations.SQLite, "sqlite")
}

type sqliteMigrator struct {
	db *sql.DB
}

func (m *sqliteMigrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migrationTable+` (
		name       TEXT PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`)
	return err
}

func (m *sqliteMigrator) isApplied(ctx context.Context, name string) (bool, error) {
	var found int
	err := m.db.QueryRowContext(ctx, `SELECT 1 FROM `+migrationTable+` WHERE name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (m *sqliteMigrator) apply(ctx context.Context, name, upSQL string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, upSQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
		name, time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}

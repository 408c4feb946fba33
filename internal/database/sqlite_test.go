package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/config"
	"github.com/Shivanand-hulikatti/campus-events/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "  ")
	require.Error(t, err)
}

func TestOpenSQLiteAppliesMigrationsOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")

	db, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening must not re-run the schema.
	db, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var applied int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)

	for _, table := range []string{"events", "registrations"} {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, table)
	}

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id INT);\n", ExtractUpMigration(content))
	assert.Equal(t, "SELECT 1;", ExtractUpMigration("SELECT 1;"))
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := config.Config{
		Driver:    config.DriverSQLite,
		TxTimeout: time.Second,
		SQLite:    config.SQLite{Path: filepath.Join(t.TempDir(), "store.db")},
	}
	store, err := OpenStore(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer store.Close()

	events, err := store.ListEvents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), config.Config{Driver: "mongo"}, logger.Discard())
	require.Error(t, err)
}

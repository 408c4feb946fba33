// Package migrations embeds the schema for each storage backend.
package migrations

import "embed"

// Postgres contains the PostgreSQL migrations.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// SQLite contains the SQLite migrations.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package migrations embeds the schema migrations for the local durable
// store and applies them with goose. The schema ships in two dialect
// directories (sqlite, postgres) because the store can run on either
// backend; both evolve additively in lockstep.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sqlite/*.sql postgres/*.sql
var embedMigrations embed.FS

// Migrate brings db up to the latest schema version for the given driver
// name ("sqlite3" or "pgx").
func Migrate(db *sql.DB, driver string) error {
	goose.SetBaseFS(embedMigrations)

	var dir string
	switch driver {
	case "sqlite3":
		dir = "sqlite"
	case "pgx":
		dir = "postgres"
	default:
		return fmt.Errorf("migrations: unsupported driver %q", driver)
	}

	if err := goose.SetDialect(driver); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}

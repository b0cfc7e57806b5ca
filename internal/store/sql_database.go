// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package store

import (
	"database/sql"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/migrations"
)

// DB wraps the open database handle together with the driver name and the
// backend's error classificator. Repositories embed *DB and share one
// connection pool.
type DB struct {
	*sql.DB

	driver             string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate brings the schema up to date for the connected backend.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}

// classify is a nil-safe shortcut around the backend classificator, used by
// repositories to annotate failure logs.
func (db *DB) classify(err error) ErrorClassification {
	if db.errorClassificator == nil {
		return NonRetryable
	}
	return db.errorClassificator.Classify(err)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package store

import (
	"context"
	"strings"
	"time"

	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/logger"
)

const openTimeout = 10 * time.Second

// Storages groups the durable-store repositories into a single value passed
// to the service layer. The collections are independently transactional; no
// cross-collection transaction is ever taken.
type Storages struct {
	PendingOperations PendingOperationRepository
	Subscriptions     SubscriptionRepository
	Cache             CacheRepository
	Meta              MetaRepository

	db        *DB
	available bool
}

// NewStorages opens the durable store described by cfg and returns the
// repository set. Opening is best-effort: when storage is disabled by
// configuration, or the database cannot be opened or migrated, the returned
// set is the unavailable one (every operation answers [ErrUnavailable]) and
// the daemon carries on online-only. The process never fails to start
// because of the local store.
func NewStorages(cfg config.Storage, log *logger.Logger) *Storages {
	if cfg.Disabled {
		log.Info().Str("func", "NewStorages").Msg("durable store disabled by configuration")
		return NewUnavailableStorages(log)
	}

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	defer cancel()

	var (
		db  *DB
		err error
	)
	if isPostgresDSN(cfg.DB.DSN) {
		db, err = NewConnectPostgres(ctx, cfg.DB, log)
	} else {
		db, err = NewConnectSQLite(ctx, cfg.DB, log)
	}
	if err != nil {
		log.Warn().
			Err(err).
			Str("func", "NewStorages").
			Msg("durable store could not be opened, continuing without persistence")
		return NewUnavailableStorages(log)
	}

	if err := db.Migrate(); err != nil {
		log.Warn().
			Err(err).
			Str("func", "NewStorages").
			Msg("durable store migration failed, continuing without persistence")
		db.Close()
		return NewUnavailableStorages(log)
	}

	log.Info().Str("func", "NewStorages").Str("driver", db.driver).Msg("durable store ready")

	return &Storages{
		PendingOperations: NewPendingOperationRepository(db, log),
		Subscriptions:     NewSubscriptionRepository(db, log),
		Cache:             NewCacheRepository(db, log),
		Meta:              NewMetaRepository(db, log),
		db:                db,
		available:         true,
	}
}

// Available reports whether the repositories are backed by a real database.
func (s *Storages) Available() bool {
	return s.available
}

// Close releases the database connection. Closing an unavailable set is a
// no-op.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// isPostgresDSN picks the backend from the DSN shape; anything that is not a
// postgres URL is treated as a sqlite file path.
func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

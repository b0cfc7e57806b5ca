// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tabwave/pushsync/internal/logger"
)

type metaRepository struct {
	*DB
	logger *logger.Logger
}

// NewMetaRepository constructs the key-value meta repository on top of an
// open *DB.
func NewMetaRepository(db *DB, logger *logger.Logger) MetaRepository {
	return &metaRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *metaRepository) Get(ctx context.Context, key string) (string, bool, error) {
	log := logger.FromContext(ctx)

	var value string
	err := r.DB.QueryRowContext(ctx, getMetaValue, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		log.Err(err).
			Str("func", "metaRepository.Get").
			Str("key", key).
			Msg("failed to query meta value")
		return "", false, fmt.Errorf("failed to query meta value %q: %w", key, err)
	}

	return value, true, nil
}

func (r *metaRepository) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	_, err := r.DB.ExecContext(ctx, upsertMetaValue, key, value, time.Now().UTC().Unix())
	if err != nil {
		log.Err(err).
			Str("func", "metaRepository.Set").
			Str("key", key).
			Bool("retryable", r.DB.classify(err) == Retryable).
			Msg("failed to set meta value")
		return fmt.Errorf("failed to set meta value %q: %w", key, err)
	}

	return nil
}

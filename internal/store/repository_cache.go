// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/tabwave/pushsync/internal/logger"
)

type cacheRepository struct {
	*DB
	logger *logger.Logger

	// now is swappable so tests can pin the clock.
	now func() time.Time
}

// NewCacheRepository constructs the expiring-cache repository on top of an
// open *DB.
func NewCacheRepository(db *DB, logger *logger.Logger) CacheRepository {
	return &cacheRepository{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *cacheRepository) Upsert(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	log := logger.FromContext(ctx)

	now := r.now().UTC()
	expiresAt := now
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	_, err := r.DB.ExecContext(ctx, upsertCacheEntry, key, data, now.Unix(), expiresAt.Unix())
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.Upsert").
			Str("key", key).
			Bool("retryable", r.DB.classify(err) == Retryable).
			Msg("failed to upsert cache entry")
		return fmt.Errorf("failed to upsert cache entry %q: %w", key, err)
	}

	return nil
}

// GetIfNotExpired never returns stale data: an entry past its expiry reports
// absent, and the read schedules a background delete of the dead row.
func (r *cacheRepository) GetIfNotExpired(ctx context.Context, key string) ([]byte, bool, error) {
	log := logger.FromContext(ctx)

	var (
		data      []byte
		expiresAt int64
	)
	err := r.DB.QueryRowContext(ctx, getCacheEntry, key).Scan(&data, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		log.Err(err).
			Str("func", "cacheRepository.GetIfNotExpired").
			Str("key", key).
			Msg("failed to query cache entry")
		return nil, false, fmt.Errorf("failed to query cache entry %q: %w", key, err)
	}

	if expiresAt <= r.now().UTC().Unix() {
		go r.deleteExpired(key)
		return nil, false, nil
	}

	return data, true, nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	log := logger.FromContext(ctx)

	if _, err := r.DB.ExecContext(ctx, deleteCacheEntry, key); err != nil {
		log.Err(err).
			Str("func", "cacheRepository.Delete").
			Str("key", key).
			Msg("failed to delete cache entry")
		return fmt.Errorf("failed to delete cache entry %q: %w", key, err)
	}

	return nil
}

func (r *cacheRepository) SweepExpired(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.Delete("cache_entries").
		Where(sq.LtOrEq{"expires_at": r.now().UTC().Unix()}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.SweepExpired").
			Msg("failed to build sweep query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "cacheRepository.SweepExpired").
			Bool("retryable", r.DB.classify(err) == Retryable).
			Msg("failed to sweep expired cache entries")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	swept, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read sweep result: %w", err)
	}

	return swept, nil
}

// deleteExpired runs detached from the reading request, so it uses a fresh
// context and the repository logger.
func (r *cacheRepository) deleteExpired(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := r.DB.ExecContext(ctx, deleteCacheEntry, key); err != nil {
		r.logger.Warn().
			Err(err).
			Str("func", "cacheRepository.deleteExpired").
			Str("key", key).
			Msg("failed to evict expired cache entry")
		return
	}

	r.logger.Debug().
		Str("func", "cacheRepository.deleteExpired").
		Str("key", key).
		Msg("evicted expired cache entry")
}

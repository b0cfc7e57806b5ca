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
	"github.com/tabwave/pushsync/models"
)

type pendingOperationRepository struct {
	*DB
	logger *logger.Logger
}

// NewPendingOperationRepository constructs the queue repository on top of an
// open *DB.
func NewPendingOperationRepository(db *DB, logger *logger.Logger) PendingOperationRepository {
	return &pendingOperationRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *pendingOperationRepository) Append(ctx context.Context, op models.PendingOperation) (models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now().UTC()
	}
	if op.MaxRetries <= 0 {
		op.MaxRetries = models.DefaultMaxRetries
	}

	err := r.DB.QueryRowContext(ctx, appendPendingOperation,
		string(op.Kind),
		op.Payload,
		op.CreatedAt.Unix(),
		op.RetryCount,
		op.MaxRetries,
	).Scan(&op.ID)
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.Append").
			Str("kind", string(op.Kind)).
			Bool("retryable", r.DB.classify(err) == Retryable).
			Msg("failed to append pending operation")
		return models.PendingOperation{}, fmt.Errorf("failed to append pending operation: %w", err)
	}

	return op, nil
}

func (r *pendingOperationRepository) ListAll(ctx context.Context) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, listPendingOperations)
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.ListAll").
			Msg("failed to query pending operations")
		return nil, fmt.Errorf("failed to query pending operations: %w", err)
	}
	defer rows.Close()

	return scanPendingOperations(rows)
}

func (r *pendingOperationRepository) ListByKind(ctx context.Context, kind models.OperationKind, limit uint64) ([]models.PendingOperation, error) {
	log := logger.FromContext(ctx)

	builder := sq.Select("id", "kind", "payload", "created_at", "retry_count", "max_retries").
		From("pending_operations").
		Where(sq.Eq{"kind": string(kind)}).
		OrderBy("id ASC").
		PlaceholderFormat(sq.Dollar)
	if limit > 0 {
		builder = builder.Limit(limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.ListByKind").
			Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.ListByKind").
			Str("kind", string(kind)).
			Msg("failed to query pending operations by kind")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return scanPendingOperations(rows)
}

func (r *pendingOperationRepository) CountAll(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	var count int64
	if err := r.DB.QueryRowContext(ctx, countPendingOperations).Scan(&count); err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.CountAll").
			Msg("failed to count pending operations")
		return 0, fmt.Errorf("failed to count pending operations: %w", err)
	}

	return count, nil
}

// DeleteByID is idempotent: deleting an id that is already gone (evicted by
// a concurrent drain) is not an error.
func (r *pendingOperationRepository) DeleteByID(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.DB.ExecContext(ctx, deletePendingOperationByID, id); err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.DeleteByID").
			Int64("id", id).
			Bool("retryable", r.DB.classify(err) == Retryable).
			Msg("failed to delete pending operation")
		return fmt.Errorf("failed to delete pending operation %d: %w", id, err)
	}

	return nil
}

func (r *pendingOperationRepository) IncrementRetryOrEvict(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.IncrementRetryOrEvict").
			Msg("failed to begin transaction")
		return false, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var retryCount, maxRetries int
	err = tx.QueryRowContext(ctx, incrementPendingOperationRetry, id).Scan(&retryCount, &maxRetries)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("pending operation %d: %w", id, ErrNotFound)
		}
		log.Err(err).
			Str("func", "pendingOperationRepository.IncrementRetryOrEvict").
			Int64("id", id).
			Msg("failed to increment retry counter")
		return false, fmt.Errorf("failed to increment retry counter for operation %d: %w", id, err)
	}

	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}

	evicted := false
	if retryCount >= maxRetries {
		if _, err := tx.ExecContext(ctx, deletePendingOperationByID, id); err != nil {
			log.Err(err).
				Str("func", "pendingOperationRepository.IncrementRetryOrEvict").
				Int64("id", id).
				Msg("failed to evict exhausted operation")
			return false, fmt.Errorf("failed to evict operation %d: %w", id, err)
		}
		evicted = true
		log.Warn().
			Str("func", "pendingOperationRepository.IncrementRetryOrEvict").
			Int64("id", id).
			Int("retry_count", retryCount).
			Msg("pending operation dropped after exhausting its retry budget")
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).
			Str("func", "pendingOperationRepository.IncrementRetryOrEvict").
			Msg("failed to commit transaction")
		return false, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return evicted, nil
}

func scanPendingOperations(rows *sql.Rows) ([]models.PendingOperation, error) {
	var items []models.PendingOperation

	for rows.Next() {
		var (
			item      models.PendingOperation
			kind      string
			createdAt int64
		)
		if err := rows.Scan(&item.ID, &kind, &item.Payload, &createdAt, &item.RetryCount, &item.MaxRetries); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		item.Kind = models.OperationKind(kind)
		item.CreatedAt = time.Unix(createdAt, 0).UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return items, nil
}

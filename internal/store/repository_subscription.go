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
	"github.com/tabwave/pushsync/models"
)

type subscriptionRepository struct {
	*DB
	logger *logger.Logger
}

// NewSubscriptionRepository constructs the device-subscription repository on
// top of an open *DB.
func NewSubscriptionRepository(db *DB, logger *logger.Logger) SubscriptionRepository {
	return &subscriptionRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *subscriptionRepository) UpsertByDeviceID(ctx context.Context, sub models.DeviceSubscription) error {
	log := logger.FromContext(ctx)

	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	_, err := r.DB.ExecContext(ctx, upsertDeviceSubscription,
		sub.DeviceID,
		sub.Endpoint,
		sub.P256DH,
		sub.Auth,
		sub.CreatedAt.Unix(),
		sub.UpdatedAt.Unix(),
	)
	if err != nil {
		log.Err(err).
			Str("func", "subscriptionRepository.UpsertByDeviceID").
			Str("device_id", sub.DeviceID).
			Bool("retryable", r.DB.classify(err) == Retryable).
			Msg("failed to upsert device subscription")
		return fmt.Errorf("failed to upsert device subscription: %w", err)
	}

	return nil
}

func (r *subscriptionRepository) GetByDeviceID(ctx context.Context, deviceID string) (models.DeviceSubscription, error) {
	log := logger.FromContext(ctx)

	var (
		sub       models.DeviceSubscription
		createdAt int64
		updatedAt int64
	)
	err := r.DB.QueryRowContext(ctx, getDeviceSubscription, deviceID).Scan(
		&sub.DeviceID,
		&sub.Endpoint,
		&sub.P256DH,
		&sub.Auth,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceSubscription{}, fmt.Errorf("device %s: %w", deviceID, ErrNotFound)
		}
		log.Err(err).
			Str("func", "subscriptionRepository.GetByDeviceID").
			Str("device_id", deviceID).
			Msg("failed to query device subscription")
		return models.DeviceSubscription{}, fmt.Errorf("failed to query device subscription: %w", err)
	}

	sub.CreatedAt = time.Unix(createdAt, 0).UTC()
	sub.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return sub, nil
}

// DeleteByDeviceID is idempotent; deleting a record that does not exist is
// not an error.
func (r *subscriptionRepository) DeleteByDeviceID(ctx context.Context, deviceID string) error {
	log := logger.FromContext(ctx)

	if _, err := r.DB.ExecContext(ctx, deleteDeviceSubscription, deviceID); err != nil {
		log.Err(err).
			Str("func", "subscriptionRepository.DeleteByDeviceID").
			Str("device_id", deviceID).
			Bool("retryable", r.DB.classify(err) == Retryable).
			Msg("failed to delete device subscription")
		return fmt.Errorf("failed to delete device subscription: %w", err)
	}

	return nil
}

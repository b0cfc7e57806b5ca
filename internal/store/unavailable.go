// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package store

import (
	"context"
	"time"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/models"
)

// NewUnavailableStorages returns a repository set whose every operation is a
// no-op answering [ErrUnavailable]. It stands in for the real store when the
// backing database cannot be used, so callers never need a nil check.
func NewUnavailableStorages(log *logger.Logger) *Storages {
	log.Warn().Str("func", "NewUnavailableStorages").Msg("durable store operations will be no-ops")

	u := unavailableStore{}
	return &Storages{
		PendingOperations: u,
		Subscriptions:     u,
		Cache:             u,
		Meta:              u,
	}
}

// unavailableStore implements every repository interface with typed
// "not available" results.
type unavailableStore struct{}

func (unavailableStore) Append(context.Context, models.PendingOperation) (models.PendingOperation, error) {
	return models.PendingOperation{}, ErrUnavailable
}

func (unavailableStore) ListAll(context.Context) ([]models.PendingOperation, error) {
	return nil, ErrUnavailable
}

func (unavailableStore) ListByKind(context.Context, models.OperationKind, uint64) ([]models.PendingOperation, error) {
	return nil, ErrUnavailable
}

func (unavailableStore) CountAll(context.Context) (int64, error) {
	return 0, ErrUnavailable
}

func (unavailableStore) DeleteByID(context.Context, int64) error {
	return ErrUnavailable
}

func (unavailableStore) IncrementRetryOrEvict(context.Context, int64) (bool, error) {
	return false, ErrUnavailable
}

func (unavailableStore) UpsertByDeviceID(context.Context, models.DeviceSubscription) error {
	return ErrUnavailable
}

func (unavailableStore) GetByDeviceID(context.Context, string) (models.DeviceSubscription, error) {
	return models.DeviceSubscription{}, ErrUnavailable
}

func (unavailableStore) DeleteByDeviceID(context.Context, string) error {
	return ErrUnavailable
}

func (unavailableStore) Upsert(context.Context, string, []byte, time.Duration) error {
	return ErrUnavailable
}

func (unavailableStore) GetIfNotExpired(context.Context, string) ([]byte, bool, error) {
	return nil, false, ErrUnavailable
}

func (unavailableStore) Delete(context.Context, string) error {
	return ErrUnavailable
}

func (unavailableStore) SweepExpired(context.Context) (int64, error) {
	return 0, ErrUnavailable
}

func (unavailableStore) Get(context.Context, string) (string, bool, error) {
	return "", false, ErrUnavailable
}

func (unavailableStore) Set(context.Context, string, string) error {
	return ErrUnavailable
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package store

import (
	"context"
	"time"

	"github.com/tabwave/pushsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// Meta keys used by the subscription manager.
const (
	MetaKeyDeviceID       = "device_id"
	MetaKeyVapidPublicKey = "vapid_public_key"
)

// PendingOperationRepository is the durable FIFO queue of server calls
// awaiting replay. Insertion order is drain order.
type PendingOperationRepository interface {
	// Append persists op and returns it with the assigned id and creation
	// time filled in.
	Append(ctx context.Context, op models.PendingOperation) (models.PendingOperation, error)

	// ListAll returns every queued operation in insertion order.
	ListAll(ctx context.Context) ([]models.PendingOperation, error)

	// ListByKind returns queued operations of one kind, oldest first,
	// at most limit rows (0 means no limit).
	ListByKind(ctx context.Context, kind models.OperationKind, limit uint64) ([]models.PendingOperation, error)

	// CountAll returns the queue depth.
	CountAll(ctx context.Context) (int64, error)

	// DeleteByID removes one operation after a successful replay.
	DeleteByID(ctx context.Context, id int64) error

	// IncrementRetryOrEvict bumps the retry counter of one operation and
	// deletes it once the counter reaches its retry budget. It reports
	// whether the operation was evicted.
	IncrementRetryOrEvict(ctx context.Context, id int64) (evicted bool, err error)
}

// SubscriptionRepository persists this device's push registration record.
type SubscriptionRepository interface {
	UpsertByDeviceID(ctx context.Context, sub models.DeviceSubscription) error

	// GetByDeviceID returns ErrNotFound when no record exists.
	GetByDeviceID(ctx context.Context, deviceID string) (models.DeviceSubscription, error)

	// DeleteByDeviceID is a no-op when no record exists.
	DeleteByDeviceID(ctx context.Context, deviceID string) error
}

// CacheRepository is the general-purpose expiring cache.
type CacheRepository interface {
	// Upsert stores data under key with the given time to live. A
	// non-positive ttl stores an already-expired entry.
	Upsert(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// GetIfNotExpired returns the cached data and true when key exists and
	// is fresh. An expired entry reports absent and is deleted
	// asynchronously as a side effect of the read.
	GetIfNotExpired(ctx context.Context, key string) ([]byte, bool, error)

	Delete(ctx context.Context, key string) error

	// SweepExpired deletes every expired entry and returns how many rows
	// were removed.
	SweepExpired(ctx context.Context) (int64, error)
}

// MetaRepository is a small key-value collection for standalone client
// flags (device id, cached VAPID public key).
type MetaRepository interface {
	// Get returns the stored value and true when key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	Set(ctx context.Context, key, value string) error
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying. Each backend ships its own implementation.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

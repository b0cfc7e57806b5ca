// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package store

// Static queries shared by both backends. $N placeholders are understood by
// the pgx and sqlite3 drivers alike; timestamps are stored as unix seconds.
// Dynamic queries (kind filters, the cache sweep) are built with squirrel in
// the repositories instead.
const (
	appendPendingOperation = `
		INSERT INTO pending_operations (
			kind,
			payload,
			created_at,
			retry_count,
			max_retries
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`

	listPendingOperations = `
		SELECT
			id,
			kind,
			payload,
			created_at,
			retry_count,
			max_retries
		FROM pending_operations
		ORDER BY id ASC;`

	countPendingOperations = `
		SELECT COUNT(*) FROM pending_operations;`

	deletePendingOperationByID = `
		DELETE FROM pending_operations
		WHERE id = $1;`

	incrementPendingOperationRetry = `
		UPDATE pending_operations
		SET retry_count = retry_count + 1
		WHERE id = $1
		RETURNING retry_count, max_retries;`

	upsertDeviceSubscription = `
		INSERT INTO device_subscriptions (
			device_id,
			endpoint,
			p256dh,
			auth,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (device_id) DO UPDATE SET
			endpoint   = excluded.endpoint,
			p256dh     = excluded.p256dh,
			auth       = excluded.auth,
			updated_at = excluded.updated_at;`

	getDeviceSubscription = `
		SELECT
			device_id,
			endpoint,
			p256dh,
			auth,
			created_at,
			updated_at
		FROM device_subscriptions
		WHERE device_id = $1;`

	deleteDeviceSubscription = `
		DELETE FROM device_subscriptions
		WHERE device_id = $1;`

	upsertCacheEntry = `
		INSERT INTO cache_entries (
			key,
			data,
			created_at,
			expires_at
		) VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			data       = excluded.data,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at;`

	getCacheEntry = `
		SELECT data, expires_at
		FROM cache_entries
		WHERE key = $1;`

	deleteCacheEntry = `
		DELETE FROM cache_entries
		WHERE key = $1;`

	getMetaValue = `
		SELECT value
		FROM client_meta
		WHERE key = $1;`

	upsertMetaValue = `
		INSERT INTO client_meta (
			key,
			value,
			updated_at
		) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at;`
)

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package models

import "time"

// CacheEntry is one row of the general-purpose expiring cache.
// Entries are swept periodically and also evicted lazily on read: a read past
// ExpiresAt reports the key absent and deletes the row as a side effect, so
// stale data is never returned.
type CacheEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at the given instant.
func (c CacheEntry) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

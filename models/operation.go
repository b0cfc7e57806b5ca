// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package models

import "time"

// OperationKind identifies which remote call a queued operation replays.
type OperationKind string

const (
	OperationSubscribe         OperationKind = "subscribe"
	OperationUnsubscribe       OperationKind = "unsubscribe"
	OperationUpdatePreferences OperationKind = "update_preferences"

	// OperationCustom is reserved for application-registered operations that
	// are not part of the push-subscription lifecycle.
	OperationCustom OperationKind = "custom"
)

// DefaultMaxRetries bounds how many failed drain attempts a queued operation
// survives before it is evicted.
const DefaultMaxRetries = 3

// PendingOperation is one durably queued server call awaiting replay.
//
// Operations are appended when a remote call fails transiently or is skipped
// because the device is offline. The sync engine replays them in insertion
// order; an operation is deleted on success and evicted once RetryCount
// reaches MaxRetries.
type PendingOperation struct {
	// ID is assigned by the store, monotonically increasing.
	// Drain order is ascending ID.
	ID int64 `json:"id"`

	Kind OperationKind `json:"kind"`

	// Payload is the kind-specific request body, stored as JSON.
	// For the push lifecycle kinds it is the marshalled wire request
	// (SubscribeRequest, UnsubscribeRequest, PreferencesRequest).
	Payload []byte `json:"payload"`

	CreatedAt time.Time `json:"created_at"`

	// RetryCount is incremented once per failed drain attempt.
	RetryCount int `json:"retry_count"`

	// MaxRetries caps RetryCount. Zero means DefaultMaxRetries.
	MaxRetries int `json:"max_retries"`
}

// RetryBudget returns the effective retry cap for the operation.
func (p PendingOperation) RetryBudget() int {
	if p.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return p.MaxRetries
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package service

import (
	"context"

	"github.com/tabwave/pushsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// NetworkSource is the slice of the network monitor the sync layer consumes:
// the current connectivity classification, nothing else. *netmon.Monitor
// satisfies it.
type NetworkSource interface {
	Current() models.NetworkState
}

// SyncEngine drains the pending-operation queue through a single registered
// handler.
type SyncEngine interface {
	// RegisterHandler installs the handler invoked per queued operation.
	// The handler returns true when the operation is done and may leave
	// the queue, false (or an error) when the attempt failed and the
	// operation should stay for a retry. Exactly one handler exists at a
	// time; a later call replaces the earlier one. Must be wired before
	// the first Drain.
	RegisterHandler(fn func(ctx context.Context, op models.PendingOperation) (bool, error))

	// Drain replays the queue oldest-first and reports whether every
	// listed operation was attempted and succeeded. The result is
	// advisory: false can still mean a partial sync happened. Concurrent
	// calls share one pass over the queue; while offline, Drain touches
	// nothing and returns false.
	Drain(ctx context.Context) bool
}

// SubscriptionManager owns the push-subscription lifecycle for this device:
// permission, platform registration, the server-side record, and the queued
// replay of server calls that could not be made at the time.
type SubscriptionManager interface {
	// IsSupported reports whether push subscriptions can work in this
	// environment at all.
	IsSupported() bool

	// DeviceID returns the stable identifier of this installation,
	// generating and persisting one on first use. Without a usable store
	// it returns the fixed fallback id every time.
	DeviceID(ctx context.Context) string

	// VapidPublicKey returns the application server key, fetching and
	// persisting it on first use. A key that cannot be obtained reports
	// absence, not an error.
	VapidPublicKey(ctx context.Context) (string, bool)

	// Status derives the live subscription status from the permission
	// state and an actual platform query. The persisted record is only a
	// fallback for when the platform cannot be queried.
	Status(ctx context.Context) models.SubscriptionStatus

	// RequestPermission triggers the notification-permission prompt. An
	// already-denied permission is returned as is without prompting.
	RequestPermission(ctx context.Context) (models.Permission, error)

	// Subscribe establishes a push subscription and registers it with the
	// server, requesting permission first if still undecided. A transient
	// or offline server failure is absorbed by queueing the registration;
	// the returned status then already reports subscribed.
	//
	// Fails fast with ErrNotSupported, ErrPermissionDenied or
	// ErrVapidUnavailable.
	Subscribe(ctx context.Context, prefs models.Preferences) (models.SubscriptionStatus, error)

	// Unsubscribe tears the subscription down: platform first, then the
	// local record, then the server (queued when unreachable). Not being
	// subscribed is a trivial success.
	Unsubscribe(ctx context.Context) error

	// UpdatePreferences pushes a new notification-preference set to the
	// server, queueing on transient failure. Returns ErrNotSubscribed
	// when no subscription record exists to attach them to.
	UpdatePreferences(ctx context.Context, prefs models.Preferences) error

	// Subscriptions lists the registrations of every device on the
	// account, served from the expiring cache when fresh.
	Subscriptions(ctx context.Context) ([]models.ServerSubscription, error)

	// ResyncSubscription reconciles a platform-side registration change
	// (rotated or revoked endpoint) with the local record and the server.
	ResyncSubscription(ctx context.Context) error

	// HandleOperation is the SyncHandler the manager supplies to the
	// engine. It replays one queued operation against the server adapter.
	HandleOperation(ctx context.Context, op models.PendingOperation) (bool, error)

	// OnStatusChange registers listener and returns its cancel function.
	// The listener immediately receives the current status, then one
	// callback per state-affecting operation. Listeners must not call
	// back into the manager.
	OnStatusChange(listener func(models.SubscriptionStatus)) (cancel func())
}

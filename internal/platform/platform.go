// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package platform abstracts the host's push and notification capabilities
// behind three small interfaces. The composition root picks implementations
// at startup: the web-push registrar plus the bridge-backed notifier on a
// full install, no-op fallbacks everywhere else. Callers never branch on the
// host environment; unsupported capability is an ordinary answer, not an
// error.
package platform

import (
	"context"

	"github.com/tabwave/pushsync/models"
)

//go:generate mockgen -source=platform.go -destination=../mock/platform_mock.go -package=mock

// Registrar manages the device's push registration.
type Registrar interface {
	// Supported reports whether push registration can work at all in this
	// environment. A false answer is stable for the process lifetime.
	Supported() bool

	// Get returns the current registration, if any. The boolean is false
	// when the device holds no registration.
	Get(ctx context.Context) (models.PushSubscription, bool, error)

	// Subscribe creates a push registration bound to the application server
	// key, or returns the existing one when already registered with the same
	// key. Registering with a different key while subscribed is an error.
	Subscribe(ctx context.Context, applicationServerKey string) (models.PushSubscription, error)

	// Unsubscribe drops the registration. Idempotent.
	Unsubscribe(ctx context.Context) error
}

// PermissionGate models the user-facing notification permission.
type PermissionGate interface {
	// Current returns the permission state without prompting.
	Current(ctx context.Context) models.Permission

	// Request triggers the permission prompt when the state is still
	// default. Denied is sticky: requesting again stays denied.
	Request(ctx context.Context) (models.Permission, error)
}

// Notifier reaches notifications already displayed by the worker peer, and
// the application badge.
type Notifier interface {
	// CloseNotification dismisses the displayed notification with the given
	// tag. Closing an unknown tag is not an error.
	CloseNotification(ctx context.Context, tag string) error

	// SetBadge sets the application badge count; zero clears it.
	SetBadge(ctx context.Context, count int) error
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package service

import "errors"

var (
	// ErrNotSupported is returned by subscription operations when the
	// platform provider reports no push capability. Terminal: no amount of
	// retrying changes it.
	ErrNotSupported = errors.New("push subscriptions are not supported in this environment")

	// ErrPermissionDenied is returned when the notification permission is
	// denied. The denial is sticky until the user flips it in system
	// settings, so callers should surface it rather than retry.
	ErrPermissionDenied = errors.New("notification permission denied")

	// ErrVapidUnavailable is returned by Subscribe when no VAPID public key
	// could be obtained from memory, the store, or the server.
	ErrVapidUnavailable = errors.New("vapid public key unavailable")

	// ErrNotSubscribed is returned by preference updates when there is no
	// active subscription to attach the preferences to.
	ErrNotSubscribed = errors.New("no active push subscription")
)

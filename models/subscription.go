// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package models

import "time"

// FallbackDeviceID is returned by the subscription manager when the durable
// store is unavailable and no device identifier can be persisted. It is a
// fixed sentinel so that repeated calls stay consistent within a process.
const FallbackDeviceID = "unknown-device"

// Permission is the platform notification-permission state.
type Permission string

const (
	// PermissionDefault means the user has not decided yet; a prompt may be
	// shown.
	PermissionDefault Permission = "default"

	// PermissionGranted allows creating push subscriptions and showing
	// notifications.
	PermissionGranted Permission = "granted"

	// PermissionDenied is sticky: it cannot be reversed programmatically,
	// only by the user through system settings.
	PermissionDenied Permission = "denied"
)

// PushSubscription is the platform-issued push registration descriptor:
// the delivery endpoint plus the credential material a push service needs
// to encrypt messages for this device.
type PushSubscription struct {
	Endpoint string `json:"endpoint"`

	Keys SubscriptionKeys `json:"keys"`

	// ExpiresAt is set when the push service issued a bounded registration.
	ExpiresAt *time.Time `json:"expirationTime,omitempty"`
}

// SubscriptionKeys carries the client keypair material of a push
// registration, base64url-encoded as the wire contract expects.
type SubscriptionKeys struct {
	// P256DH is the uncompressed ECDH public key on the P-256 curve.
	P256DH string `json:"p256dh"`

	// Auth is the 16-byte authentication secret.
	Auth string `json:"auth"`
}

// DeviceSubscription is the locally persisted record of this device's push
// registration. One row per device id. It captures what this client believes
// its registration to be; the live platform registration stays authoritative
// for status derivation, and this record serves as a cross-check and as a
// fallback when the platform cannot be queried.
type DeviceSubscription struct {
	DeviceID  string    `json:"device_id"`
	Endpoint  string    `json:"endpoint"`
	P256DH    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscription converts the stored record back into the wire descriptor.
func (d DeviceSubscription) Subscription() PushSubscription {
	return PushSubscription{
		Endpoint: d.Endpoint,
		Keys:     SubscriptionKeys{P256DH: d.P256DH, Auth: d.Auth},
	}
}

// Preferences selects which product events produce a push notification for
// this device. The zero value disables everything; use DefaultPreferences
// for the opt-out-style default.
type Preferences struct {
	// PermissionRequests covers agent tool-use approvals waiting on the user.
	PermissionRequests bool `json:"permissionRequests"`

	// SessionCompletion covers a coding session finishing or failing.
	SessionCompletion bool `json:"sessionCompletion"`

	// AgentErrors covers unrecoverable agent-side errors.
	AgentErrors bool `json:"agentErrors"`
}

// DefaultPreferences returns the preference set applied when the caller
// subscribes without specifying one.
func DefaultPreferences() Preferences {
	return Preferences{
		PermissionRequests: true,
		SessionCompletion:  true,
		AgentErrors:        true,
	}
}

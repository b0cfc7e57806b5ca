// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package models

import "time"

// Wire types for the web-push endpoints of the session API. JSON field names
// follow the server contract exactly and must not be renamed.

// VapidKeyResponse is the body of GET /v1/web-push/vapid-public-key.
type VapidKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

// SubscribeRequest is the body of POST /v1/web-push/subscribe.
type SubscribeRequest struct {
	Subscription PushSubscription `json:"subscription"`
	DeviceID     string           `json:"deviceId"`

	// Platform labels the client flavour ("web", "desktop", "cli") so the
	// server can pick a delivery strategy per registration.
	Platform string `json:"platform"`

	// EncryptedPreferences is the reversibly encoded preference blob.
	// Despite the wire name this is an encoding, not end-to-end encryption.
	EncryptedPreferences string `json:"encryptedPreferences,omitempty"`
}

// SubscribeResponse is the body returned by POST /v1/web-push/subscribe.
type SubscribeResponse struct {
	Success        bool   `json:"success"`
	SubscriptionID string `json:"subscriptionId"`
}

// UnsubscribeRequest is the body of POST /v1/web-push/unsubscribe.
// Endpoint is optional; the server falls back to the device id alone.
type UnsubscribeRequest struct {
	DeviceID string `json:"deviceId"`
	Endpoint string `json:"endpoint,omitempty"`
}

// PreferencesRequest is the body of PUT /v1/web-push/preferences.
type PreferencesRequest struct {
	DeviceID             string `json:"deviceId"`
	EncryptedPreferences string `json:"encryptedPreferences"`
}

// SuccessResponse is the minimal acknowledgement body shared by the
// unsubscribe and preferences endpoints.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ServerSubscription is one element of the subscription list the server
// returns; it describes a registration from any of the account's devices.
type ServerSubscription struct {
	ID        string     `json:"id"`
	DeviceID  string     `json:"deviceId"`
	Platform  string     `json:"platform"`
	Endpoint  string     `json:"endpoint"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// SubscriptionsResponse is the body of GET /v1/web-push/subscriptions.
type SubscriptionsResponse struct {
	Subscriptions []ServerSubscription `json:"subscriptions"`
}

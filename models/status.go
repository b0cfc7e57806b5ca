// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package models

import "time"

// SubscriptionState names one state of the push-subscription lifecycle.
//
// The lifecycle is a small state machine:
//
//	not_supported                              (terminal)
//	permission_default -> permission_denied    (terminal until the user
//	                                            flips it in system settings)
//	permission_default -> unsubscribed <-> subscribed
//
// States are always derived from a live platform query, never read back from
// a cache, because the platform can change them behind the app's back.
type SubscriptionState string

const (
	StateNotSupported      SubscriptionState = "not_supported"
	StatePermissionDefault SubscriptionState = "permission_default"
	StatePermissionDenied  SubscriptionState = "permission_denied"
	StateSubscribed        SubscriptionState = "subscribed"
	StateUnsubscribed      SubscriptionState = "unsubscribed"
)

// Valid reports whether s is one of the named lifecycle states.
func (s SubscriptionState) Valid() bool {
	switch s {
	case StateNotSupported, StatePermissionDefault, StatePermissionDenied,
		StateSubscribed, StateUnsubscribed:
		return true
	}
	return false
}

// CanTransition reports whether the manager is allowed to move the lifecycle
// from one state to another. Illegal moves (subscribing while denied,
// anything out of not_supported) are rejected before any side effect runs.
// denied -> default is listed because the user can reset the permission
// outside the app and the next live query will observe it.
func CanTransition(from, to SubscriptionState) bool {
	if from == to {
		return true
	}
	switch from {
	case StateNotSupported:
		return false
	case StatePermissionDefault:
		return to == StatePermissionDenied || to == StateSubscribed || to == StateUnsubscribed
	case StatePermissionDenied:
		return to == StatePermissionDefault
	case StateSubscribed:
		return to == StateUnsubscribed
	case StateUnsubscribed:
		return to == StateSubscribed
	}
	return false
}

// SubscriptionStatus is the live answer to "is this device subscribed".
// Endpoint, ExpiresAt and DeviceID are populated only when State is
// StateSubscribed.
type SubscriptionStatus struct {
	State     SubscriptionState `json:"state"`
	Endpoint  string            `json:"endpoint,omitempty"`
	ExpiresAt *time.Time        `json:"expiresAt,omitempty"`
	DeviceID  string            `json:"deviceId,omitempty"`
}

// Subscribed is shorthand for State == StateSubscribed.
func (s SubscriptionStatus) Subscribed() bool {
	return s.State == StateSubscribed
}

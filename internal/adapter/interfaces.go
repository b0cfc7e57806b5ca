// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package adapter provides transport-layer abstractions for communicating
// with the push gateway.
//
// The primary abstraction is [ServerAdapter], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling, and [IsTransient] to decide whether a failed operation
// belongs in the offline queue.
package adapter

import (
	"context"

	"github.com/tabwave/pushsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the push
// gateway. Implementations are responsible for serialisation, bearer
// credential management, and mapping transport-level errors to the sentinel
// values defined in this package.
type ServerAdapter interface {
	// GetVapidKey fetches the gateway's VAPID public key, required as the
	// applicationServerKey when registering a push subscription.
	GetVapidKey(ctx context.Context) (string, error)

	// Subscribe registers (or re-registers) a device push subscription with
	// the gateway and returns the server-assigned subscription id. The call
	// is idempotent per device id: the gateway upserts on deviceId.
	Subscribe(ctx context.Context, req models.SubscribeRequest) (models.SubscribeResponse, error)

	// Unsubscribe removes the device's subscription from the gateway.
	// Unsubscribing a device that is not registered is not an error.
	Unsubscribe(ctx context.Context, req models.UnsubscribeRequest) error

	// UpdatePreferences replaces the encrypted notification preferences
	// stored with the device's subscription.
	UpdatePreferences(ctx context.Context, req models.PreferencesRequest) error

	// ListSubscriptions fetches every subscription registered for the
	// authenticated account, across all of its devices.
	ListSubscriptions(ctx context.Context) ([]models.ServerSubscription, error)
}

// TokenSource supplies the bearer credential attached to every gateway
// request. Implementations return [ErrNoCredential] (wrapped) when no usable
// credential is available, which short-circuits the request locally.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package platform

import (
	"context"
	"fmt"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/models"
)

// noopRegistrar is the [Registrar] for environments without push capability.
// Supported is false and every mutating call fails; the subscription manager
// folds this into the not_supported status.
type noopRegistrar struct{}

// NewNoopRegistrar constructs the unsupported-environment Registrar.
func NewNoopRegistrar() Registrar {
	return noopRegistrar{}
}

func (noopRegistrar) Supported() bool { return false }

func (noopRegistrar) Get(context.Context) (models.PushSubscription, bool, error) {
	return models.PushSubscription{}, false, nil
}

func (noopRegistrar) Subscribe(context.Context, string) (models.PushSubscription, error) {
	return models.PushSubscription{}, fmt.Errorf("push registration is not supported in this environment")
}

func (noopRegistrar) Unsubscribe(context.Context) error { return nil }

// noopNotifier is the [Notifier] used when no worker peer is connected.
// Calls succeed silently; the debug log keeps the dropped effects visible
// during development.
type noopNotifier struct {
	logger *logger.Logger
}

// NewNoopNotifier constructs a Notifier that drops every call.
func NewNoopNotifier(logger *logger.Logger) Notifier {
	return &noopNotifier{logger: logger}
}

func (n *noopNotifier) CloseNotification(ctx context.Context, tag string) error {
	n.logger.Debug().
		Str("func", "noopNotifier.CloseNotification").
		Str("tag", tag).
		Msg("no worker peer; close dropped")
	return nil
}

func (n *noopNotifier) SetBadge(ctx context.Context, count int) error {
	n.logger.Debug().
		Str("func", "noopNotifier.SetBadge").
		Int("count", count).
		Msg("no worker peer; badge dropped")
	return nil
}

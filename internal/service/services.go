// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package service

import (
	"github.com/tabwave/pushsync/internal/adapter"
	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/platform"
	"github.com/tabwave/pushsync/internal/session"
	"github.com/tabwave/pushsync/internal/store"
)

// Services bundles the sync core handed to the transports and workers.
type Services struct {
	Engine       SyncEngine
	Subscription SubscriptionManager
	Reconciler   *Reconciler
}

// NewServices wires the sync engine, the subscription manager and the
// notification reconciler together: the manager supplies the engine's replay
// handler, the reconciler watches the session store. The reconciler still
// needs Start before snapshots flow.
func NewServices(
	storages *store.Storages,
	server adapter.ServerAdapter,
	registrar platform.Registrar,
	gate platform.PermissionGate,
	notifier platform.Notifier,
	network NetworkSource,
	sessions *session.Store,
	cfg config.App,
	log *logger.Logger,
) *Services {
	engine := NewSyncEngine(storages.PendingOperations, network, log)
	subscription := NewSubscriptionManager(registrar, gate, server, storages, network, cfg, log)
	engine.RegisterHandler(subscription.HandleOperation)

	return &Services{
		Engine:       engine,
		Subscription: subscription,
		Reconciler:   NewReconciler(sessions, notifier, log),
	}
}

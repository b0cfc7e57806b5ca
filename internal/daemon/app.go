// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package daemon assembles the wired components into one runnable
// application and owns start and stop ordering.
package daemon

import (
	"context"
	"sync"

	"github.com/tabwave/pushsync/internal/bridge"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/netmon"
	"github.com/tabwave/pushsync/internal/server"
	"github.com/tabwave/pushsync/internal/service"
	"github.com/tabwave/pushsync/internal/workers"
	"github.com/tabwave/pushsync/models"
)

// App runs the sync core: the network monitor, the worker-peer link, the
// notification reconciler, the background workers and the control-API
// server. Run blocks until the server stops, then unwinds the components in
// reverse start order.
type App struct {
	services *service.Services
	monitor  *netmon.Monitor

	// link is nil when no worker peer is configured; notifications then go
	// through the no-op notifier the services were built with.
	link *bridge.Bridge

	workers *workers.Workers
	server  server.Server

	logger *logger.Logger

	mu           sync.Mutex
	lastState    models.SubscriptionState
	cancelStatus func()
}

func NewApp(
	services *service.Services,
	monitor *netmon.Monitor,
	link *bridge.Bridge,
	workerPool *workers.Workers,
	srv server.Server,
	logger *logger.Logger,
) *App {
	return &App{
		services: services,
		monitor:  monitor,
		link:     link,
		workers:  workerPool,
		server:   srv,
		logger:   logger,
	}
}

// Run wires the cross-component callbacks, starts everything, and serves
// until a stop signal. The returned error is the serve error, nil after a
// clean shutdown.
func (a *App) Run() error {
	ctx := context.Background()

	a.wire()

	a.monitor.Start(ctx)
	if a.link != nil {
		a.link.Start(ctx)
	}
	a.services.Reconciler.Start()
	a.workers.Start(ctx)

	a.logger.Info().Str("func", "App.Run").Msg("daemon started")

	err := a.server.RunServer()

	a.workers.Stop()
	a.services.Reconciler.Stop()
	if a.link != nil {
		a.link.Stop()
	}
	a.monitor.Stop()
	a.unwire()

	a.logger.Info().Str("func", "App.Run").Msg("daemon stopped")

	return err
}

// wire connects the components that only meet at this level: reconnect
// drains, worker-peer events, and the unsubscribe cache clear.
func (a *App) wire() {
	a.monitor.SetDrainFunc(a.services.Engine.Drain)

	if a.link != nil {
		a.link.SetResyncFunc(func(ctx context.Context) {
			if err := a.services.Subscription.ResyncSubscription(ctx); err != nil {
				a.logger.Warn().Err(err).
					Str("func", "App.wire").
					Msg("subscription resync failed")
			}
		})
		a.link.SetNetworkHintFunc(a.monitor.Kick)
		a.link.OnNotificationClick(func(notificationID string) {
			a.logger.Info().
				Str("func", "App.wire").
				Str("notification", notificationID).
				Msg("notification clicked")
		})
	}

	a.cancelStatus = a.services.Subscription.OnStatusChange(a.onStatusChange)
}

func (a *App) unwire() {
	if a.cancelStatus != nil {
		a.cancelStatus()
		a.cancelStatus = nil
	}
}

// onStatusChange watches for the transition into unsubscribed and tells
// the worker peer to drop its cached notification assets. The replayed
// status a fresh subscription delivers first only seeds lastState.
func (a *App) onStatusChange(status models.SubscriptionStatus) {
	a.mu.Lock()
	prev := a.lastState
	a.lastState = status.State
	a.mu.Unlock()

	if a.link == nil || prev == "" {
		return
	}

	if prev != models.StateUnsubscribed && status.State == models.StateUnsubscribed {
		if err := a.link.ClearCache(context.Background()); err != nil {
			a.logger.Debug().Err(err).
				Str("func", "App.onStatusChange").
				Msg("clearing worker peer cache failed")
		}
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package httpapi implements the daemon's localhost control surface.
//
// The UI shell is the only intended client: it reads daemon state over the
// JSON endpoints, posts subscription commands, and keeps one websocket open
// on /api/events for live status, network and badge updates. Tracing,
// request logging and the optional shared-token check are handled at this
// layer before requests reach the service layer.
package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/service"
	"github.com/tabwave/pushsync/internal/session"
	"github.com/tabwave/pushsync/internal/store"
	"github.com/tabwave/pushsync/models"
)

// NetworkMonitor is the slice of the network monitor the API serves: the
// current classification plus change subscriptions. *netmon.Monitor
// satisfies it.
type NetworkMonitor interface {
	Current() models.NetworkState
	OnChange(listener func(models.NetworkState)) (cancel func())
}

type Handler struct {
	services *service.Services
	sessions *session.Store
	monitor  NetworkMonitor
	pending  store.PendingOperationRepository

	token    string
	upgrader websocket.Upgrader

	logger *logger.Logger
}

func NewHandler(
	services *service.Services,
	sessions *session.Store,
	monitor NetworkMonitor,
	pending store.PendingOperationRepository,
	cfg config.HTTP,
	logger *logger.Logger,
) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		sessions: sessions,
		monitor:  monitor,
		pending:  pending,
		token:    cfg.Token,
		upgrader: websocket.Upgrader{
			// The shell connects from an app context, not a web page, and
			// carries no meaningful Origin header. Access is gated by the
			// bearer token instead.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package httpapi

import (
	"net/http"
	"time"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/models"
)

const (
	// eventBuffer bounds the per-connection update queue. A shell that
	// stops reading loses intermediate updates rather than blocking the
	// daemon's feeds.
	eventBuffer = 16

	eventWriteTimeout = 5 * time.Second
)

// Event kinds pushed down the /api/events websocket.
const (
	eventStatus  = "status"
	eventNetwork = "network"
	eventBadge   = "badge"
)

// event is one envelope on the /api/events stream. Every new connection
// immediately receives one event per kind carrying the current value, then
// one per change.
type event struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		log.Err(err).Msg("websocket upgrade failed")
		return
	}

	updates := make(chan event, eventBuffer)
	publish := func(e event) {
		select {
		case updates <- e:
		default:
		}
	}

	// Each feed replays its current value on subscribe, which gives the
	// shell its initial snapshot without a separate request.
	cancelStatus := h.services.Subscription.OnStatusChange(func(status models.SubscriptionStatus) {
		publish(event{Kind: eventStatus, Payload: status})
	})
	defer cancelStatus()

	cancelNetwork := h.monitor.OnChange(func(state models.NetworkState) {
		publish(event{Kind: eventNetwork, Payload: state})
	})
	defer cancelNetwork()

	cancelBadge := h.services.Reconciler.OnBadgeChange(func(count int) {
		publish(event{Kind: eventBadge, Payload: count})
	})
	defer cancelBadge()

	// Inbound frames are discarded; the read loop only detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	log.Info().Msg("event stream opened")

	for {
		select {
		case <-done:
			log.Info().Msg("event stream closed")
			_ = conn.Close()
			return
		case e := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteJSON(e); err != nil {
				log.Debug().Err(err).Msg("event stream write failed")
				_ = conn.Close()
				<-done
				return
			}
		}
	}
}

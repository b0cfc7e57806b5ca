// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)

	// control surface
	router.Group(func(r chi.Router) {
		r.Use(h.withLogging)
		r.Use(h.auth)

		r.Get("/api/status", h.status)
		r.Post("/api/subscribe", h.subscribe)
		r.Post("/api/unsubscribe", h.unsubscribe)
		r.Put("/api/preferences", h.preferences)
		r.Get("/api/subscriptions", h.subscriptions)

		r.Get("/api/network", h.network)
		r.Get("/api/queue", h.queue)
		r.Post("/api/sync", h.syncNow)
		r.Put("/api/sessions", h.replaceSessions)
	})

	// The websocket upgrade needs the raw ResponseWriter; the logging
	// wrapper does not implement http.Hijacker.
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Get("/api/events", h.events)
	})

	router.Handle("/metrics", promhttp.Handler())

	return router
}

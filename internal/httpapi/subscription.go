// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tabwave/pushsync/internal/adapter"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/service"
	"github.com/tabwave/pushsync/internal/utils"
	"github.com/tabwave/pushsync/models"
)

// subscribeRequest is the body of POST /api/subscribe. The whole body is
// optional; omitted preferences fall back to the defaults.
type subscribeRequest struct {
	Preferences *models.Preferences `json:"preferences"`
}

// preferencesRequest is the body of PUT /api/preferences.
type preferencesRequest struct {
	Preferences *models.Preferences `json:"preferences"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	utils.WriteJSON(w, h.services.Subscription.Status(ctx), http.StatusOK)
}

func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	// An empty body is a subscribe with default preferences.
	var body subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	prefs := models.DefaultPreferences()
	if body.Preferences != nil {
		prefs = *body.Preferences
	}

	status, err := h.services.Subscription.Subscribe(ctx, prefs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotSupported):
			log.Err(err).Msg("push subscriptions not supported")
			http.Error(w, service.ErrNotSupported.Error(), http.StatusNotImplemented)
			return
		case errors.Is(err, service.ErrPermissionDenied):
			log.Err(err).Msg("notification permission denied")
			http.Error(w, service.ErrPermissionDenied.Error(), http.StatusForbidden)
			return
		case errors.Is(err, service.ErrVapidUnavailable):
			log.Err(err).Msg("vapid public key unavailable")
			http.Error(w, service.ErrVapidUnavailable.Error(), http.StatusServiceUnavailable)
			return
		case errors.Is(err, adapter.ErrUnauthorized):
			log.Err(err).Msg("gateway rejected the credential")
			http.Error(w, adapter.ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during subscribe")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) unsubscribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	if err := h.services.Subscription.Unsubscribe(ctx); err != nil {
		switch {
		case errors.Is(err, adapter.ErrUnauthorized):
			log.Err(err).Msg("gateway rejected the credential")
			http.Error(w, adapter.ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during unsubscribe")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) preferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var body preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if body.Preferences == nil {
		log.Error().Msg("preferences field is missing")
		http.Error(w, "preferences field is required", http.StatusBadRequest)
		return
	}

	if err := h.services.Subscription.UpdatePreferences(ctx, *body.Preferences); err != nil {
		switch {
		case errors.Is(err, service.ErrNotSubscribed):
			log.Err(err).Msg("no active subscription")
			http.Error(w, service.ErrNotSubscribed.Error(), http.StatusConflict)
			return
		case errors.Is(err, adapter.ErrUnauthorized):
			log.Err(err).Msg("gateway rejected the credential")
			http.Error(w, adapter.ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during preference update")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) subscriptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	list, err := h.services.Subscription.Subscriptions(ctx)
	if err != nil {
		switch {
		case errors.Is(err, adapter.ErrUnauthorized):
			log.Err(err).Msg("gateway rejected the credential")
			http.Error(w, adapter.ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		case errors.Is(err, adapter.ErrUnreachable):
			log.Err(err).Msg("gateway unreachable and no fresh cache")
			http.Error(w, adapter.ErrUnreachable.Error(), http.StatusServiceUnavailable)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during subscription listing")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}

	utils.WriteJSON(w, models.SubscriptionsResponse{Subscriptions: list}, http.StatusOK)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/store"
	"github.com/tabwave/pushsync/internal/utils"
	"github.com/tabwave/pushsync/models"
)

// networkResponse is the body of GET /api/network.
type networkResponse struct {
	State models.NetworkState `json:"state"`
}

// queuedOperation is one element of the queue listing. The payload stays
// private to the daemon; the shell only needs the replay metadata.
type queuedOperation struct {
	ID         int64                `json:"id"`
	Kind       models.OperationKind `json:"kind"`
	CreatedAt  time.Time            `json:"createdAt"`
	RetryCount int                  `json:"retryCount"`
	MaxRetries int                  `json:"maxRetries"`
}

// queueResponse is the body of GET /api/queue.
type queueResponse struct {
	Depth      int               `json:"depth"`
	Operations []queuedOperation `json:"operations"`
}

// syncResponse is the body of POST /api/sync. OK reports whether the drain
// pass attempted and completed every queued operation.
type syncResponse struct {
	OK bool `json:"ok"`
}

func (h *Handler) network(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, networkResponse{State: h.monitor.Current()}, http.StatusOK)
}

func (h *Handler) queue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	resp := queueResponse{Operations: []queuedOperation{}}

	ops, err := h.pending.ListAll(ctx)
	switch {
	case errors.Is(err, store.ErrUnavailable):
		// A daemon running without storage has an empty queue, not a
		// broken one.
		utils.WriteJSON(w, resp, http.StatusOK)
		return
	case err != nil:
		log.Err(err).Msg("unexpected error occurred during queue listing")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp.Depth = len(ops)
	for _, op := range ops {
		resp.Operations = append(resp.Operations, queuedOperation{
			ID:         op.ID,
			Kind:       op.Kind,
			CreatedAt:  op.CreatedAt,
			RetryCount: op.RetryCount,
			MaxRetries: op.RetryBudget(),
		})
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) syncNow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ok := h.services.Engine.Drain(ctx)
	log.Debug().Bool("ok", ok).Msg("manual sync pass finished")

	utils.WriteJSON(w, syncResponse{OK: ok}, http.StatusOK)
}

func (h *Handler) replaceSessions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var snap models.SessionSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	h.sessions.Replace(snap)
	w.WriteHeader(http.StatusNoContent)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package service

import (
	"context"
	"sort"
	"sync"

	"github.com/tabwave/pushsync/internal/events"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/metrics"
	"github.com/tabwave/pushsync/internal/platform"
	"github.com/tabwave/pushsync/internal/session"
	"github.com/tabwave/pushsync/models"
)

// Reconciler consumes session snapshots and keeps the platform surface
// honest: notifications of requests that completed anywhere are closed, and
// the app badge tracks the number of requests still waiting.
//
// Detection works by diffing consecutive snapshots, so a request completed
// on another device (whose pending phase this client never saw) is caught
// the same way as a local one. Repeating an identical snapshot produces no
// new work. The first snapshot after Start only seeds the baseline; closes
// for completions that predate this process would be noise after every
// restart.
type Reconciler struct {
	sessions *session.Store
	notifier platform.Notifier
	badge    *events.StateFeed[int]
	logger   *logger.Logger

	mu     sync.Mutex
	prev   models.SessionSnapshot
	seeded bool
	cancel func()
}

// NewReconciler creates a Reconciler. It is inert until Start.
func NewReconciler(sessions *session.Store, notifier platform.Notifier, logger *logger.Logger) *Reconciler {
	return &Reconciler{
		sessions: sessions,
		notifier: notifier,
		badge:    events.NewStateFeed(0),
		logger:   logger,
	}
}

// Start subscribes to the session store. Snapshots are handled synchronously
// on the publisher's goroutine, in emission order. Idempotent.
func (r *Reconciler) Start() {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	// Subscribe outside the lock: the store replays the current snapshot
	// into apply synchronously, which takes r.mu itself.
	cancel := r.sessions.OnSnapshot(r.apply)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
}

// Stop detaches from the session store. Safe to call when never started.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Badge returns the current badge value.
func (r *Reconciler) Badge() int {
	return r.badge.Current()
}

// OnBadgeChange registers listener and returns its cancel function. The
// listener immediately receives the current value, then one callback per
// actual change.
func (r *Reconciler) OnBadgeChange(listener func(int)) (cancel func()) {
	return r.badge.Subscribe(listener)
}

func (r *Reconciler) apply(snap models.SessionSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.seeded {
		r.seeded = true
		r.prev = snap
		r.pushBadgeLocked(snap)
		return
	}

	for _, id := range newlyCompleted(r.prev, snap) {
		if err := r.notifier.CloseNotification(context.Background(), id); err != nil {
			r.logger.Warn().Err(err).
				Str("func", "Reconciler.apply").
				Str("request", id).
				Msg("closing notification failed")
			continue
		}
		r.logger.Debug().
			Str("func", "Reconciler.apply").
			Str("request", id).
			Msg("notification closed for completed request")
	}

	r.prev = snap
	r.pushBadgeLocked(snap)
}

func (r *Reconciler) pushBadgeLocked(snap models.SessionSnapshot) {
	total := snap.PendingTotal()
	if total == r.badge.Current() {
		return
	}

	r.badge.Set(total)
	metrics.Badge.Set(float64(total))
	if err := r.notifier.SetBadge(context.Background(), total); err != nil {
		r.logger.Warn().Err(err).
			Str("func", "Reconciler.pushBadgeLocked").
			Int("badge", total).
			Msg("updating badge failed")
	}
}

// newlyCompleted returns the request ids that finished between prev and cur,
// sorted for deterministic handling. Two detections feed it: a request that
// left a session's pending set and shows up in its completed map, and a
// completed entry that was absent from the previous snapshot entirely (the
// cross-device case). A request that disappears without a completion entry,
// session deletion included, is deliberately not reported.
func newlyCompleted(prev, cur models.SessionSnapshot) []string {
	found := make(map[string]struct{})

	for sessionID, curState := range cur.Sessions {
		prevState := prev.Sessions[sessionID]

		for id := range curState.Completed {
			if _, was := prevState.Completed[id]; !was {
				found[id] = struct{}{}
			}
		}
		for id := range prevState.Requests {
			if _, still := curState.Requests[id]; still {
				continue
			}
			if _, done := curState.Completed[id]; done {
				found[id] = struct{}{}
			}
		}
	}

	ids := make([]string, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

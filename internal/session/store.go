// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package session mirrors the server-authoritative session state inside the
// daemon. The UI shell owns session synchronisation and pushes full
// snapshots down over the control API; the reconciler consumes them as an
// ordered change feed.
package session

import (
	"sync"

	"github.com/tabwave/pushsync/internal/events"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/models"
)

// Store holds the latest session snapshot and fans out replacements to
// subscribers in emission order. Publishing happens under the store's lock,
// so a subscriber sees snapshots in exactly the order they were ingested,
// starting with a synchronous replay of the current one. Callbacks must not
// call back into the Store.
type Store struct {
	mu   sync.Mutex
	cur  models.SessionSnapshot
	feed *events.Feed[models.SessionSnapshot]

	logger *logger.Logger
}

// NewStore constructs an empty session store.
func NewStore(logger *logger.Logger) *Store {
	return &Store{
		cur:    models.SessionSnapshot{Sessions: map[string]models.SessionState{}},
		feed:   events.NewFeed[models.SessionSnapshot](),
		logger: logger,
	}
}

// Current returns the latest snapshot. The snapshot's maps are shared;
// treat them as read-only.
func (s *Store) Current() models.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Replace ingests a full snapshot and delivers it to every subscriber
// before returning.
func (s *Store) Replace(snap models.SessionSnapshot) {
	if snap.Sessions == nil {
		snap.Sessions = map[string]models.SessionState{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur = snap
	s.logger.Debug().
		Str("func", "Store.Replace").
		Int("sessions", len(snap.Sessions)).
		Int("pending", snap.PendingTotal()).
		Msg("session snapshot ingested")
	s.feed.Publish(snap)
}

// OnSnapshot registers fn and returns its cancel function. fn immediately
// receives the current snapshot, then one callback per Replace, in order.
func (s *Store) OnSnapshot(fn func(models.SessionSnapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel = s.feed.Subscribe(fn)
	fn(s.cur)
	return cancel
}

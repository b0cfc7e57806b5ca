// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package service

import (
	"context"
	"errors"
	"sync"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/metrics"
	"github.com/tabwave/pushsync/internal/store"
	"github.com/tabwave/pushsync/models"
)

// drainCall is one in-flight pass over the queue. Late callers block on done
// and read ok afterwards; the channel close publishes the outcome.
type drainCall struct {
	done chan struct{}
	ok   bool
}

// syncHandler is the engine-side shorthand for the registered replay
// callback.
type syncHandler = func(ctx context.Context, op models.PendingOperation) (bool, error)

type syncEngine struct {
	pending store.PendingOperationRepository
	network NetworkSource
	logger  *logger.Logger

	mu       sync.Mutex
	handler  syncHandler
	inflight *drainCall
}

// NewSyncEngine creates a SyncEngine over the durable queue. The engine is
// inert until a handler is registered.
func NewSyncEngine(pending store.PendingOperationRepository, network NetworkSource, logger *logger.Logger) SyncEngine {
	return &syncEngine{
		pending: pending,
		network: network,
		logger:  logger,
	}
}

// RegisterHandler implements SyncEngine.
func (e *syncEngine) RegisterHandler(fn func(ctx context.Context, op models.PendingOperation) (bool, error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = fn
}

// Drain implements SyncEngine. At most one pass runs at a time: a caller
// arriving while a pass is in flight waits for that pass and shares its
// outcome, or returns false early when its own context is cancelled first.
func (e *syncEngine) Drain(ctx context.Context) bool {
	e.mu.Lock()
	if call := e.inflight; call != nil {
		e.mu.Unlock()
		select {
		case <-call.done:
			return call.ok
		case <-ctx.Done():
			return false
		}
	}
	call := &drainCall{done: make(chan struct{})}
	e.inflight = call
	handler := e.handler
	e.mu.Unlock()

	ok := e.drain(ctx, handler)

	e.mu.Lock()
	call.ok = ok
	e.inflight = nil
	e.mu.Unlock()
	close(call.done)

	return ok
}

func (e *syncEngine) drain(ctx context.Context, handler syncHandler) bool {
	if e.network.Current() == models.NetworkOffline {
		e.logger.Debug().Str("func", "syncEngine.drain").Msg("drain skipped while offline")
		metrics.DrainTotal.WithLabelValues("offline").Inc()
		return false
	}
	if handler == nil {
		e.logger.Warn().Str("func", "syncEngine.drain").Msg("drain requested with no handler registered")
		metrics.DrainTotal.WithLabelValues("error").Inc()
		return false
	}

	ops, err := e.pending.ListAll(ctx)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			e.logger.Debug().Str("func", "syncEngine.drain").Msg("drain skipped, store unavailable")
		} else {
			e.logger.Err(err).Str("func", "syncEngine.drain").Msg("listing pending operations failed")
		}
		metrics.DrainTotal.WithLabelValues("error").Inc()
		return false
	}

	ok := true
	for _, op := range ops {
		if ctx.Err() != nil {
			e.logger.Info().
				Str("func", "syncEngine.drain").
				Int64("id", op.ID).
				Msg("drain cancelled, remaining operations deferred")
			ok = false
			break
		}
		// Connectivity can drop mid-pass; already-synced items stay synced,
		// the rest wait for the next drain.
		if e.network.Current() == models.NetworkOffline {
			e.logger.Info().
				Str("func", "syncEngine.drain").
				Int64("id", op.ID).
				Msg("connection lost mid-drain, remaining operations deferred")
			ok = false
			break
		}

		if !e.attempt(ctx, handler, op) {
			ok = false
		}
	}

	e.updateDepth(ctx)

	outcome := "success"
	if !ok {
		outcome = "partial"
	}
	metrics.DrainTotal.WithLabelValues(outcome).Inc()
	e.logger.Info().
		Str("func", "syncEngine.drain").
		Int("listed", len(ops)).
		Bool("ok", ok).
		Msg("drain finished")

	return ok
}

// attempt replays one operation and settles its queue row: handler success
// deletes it, anything else bumps its retry counter until the budget evicts
// it.
func (e *syncEngine) attempt(ctx context.Context, handler syncHandler, op models.PendingOperation) bool {
	done, err := handler(ctx, op)
	if err == nil && done {
		if err := e.pending.DeleteByID(ctx, op.ID); err != nil {
			e.logger.Err(err).
				Str("func", "syncEngine.attempt").
				Int64("id", op.ID).
				Msg("deleting synced operation failed")
			return false
		}
		metrics.OperationsSynced.WithLabelValues(string(op.Kind)).Inc()
		return true
	}

	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("func", "syncEngine.attempt").
			Int64("id", op.ID).
			Str("kind", string(op.Kind)).
			Int("retries", op.RetryCount).
			Msg("operation replay failed")
	}

	evicted, evictErr := e.pending.IncrementRetryOrEvict(ctx, op.ID)
	if evictErr != nil {
		e.logger.Err(evictErr).
			Str("func", "syncEngine.attempt").
			Int64("id", op.ID).
			Msg("recording operation failure failed")
		return false
	}
	if evicted {
		e.logger.Warn().
			Str("func", "syncEngine.attempt").
			Int64("id", op.ID).
			Str("kind", string(op.Kind)).
			Msg("operation evicted after exhausting its retry budget")
		metrics.OperationsEvicted.WithLabelValues(string(op.Kind)).Inc()
	}
	return false
}

func (e *syncEngine) updateDepth(ctx context.Context) {
	depth, err := e.pending.CountAll(ctx)
	if err != nil {
		return
	}
	metrics.QueueDepth.Set(float64(depth))
}

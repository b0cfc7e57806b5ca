// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/logger"
)

const (
	drainRetryBase = 2 * time.Second
	// drainRetryMax bounds the retries after the first attempt of a tick.
	drainRetryMax = 2
)

var errIncompleteDrain = errors.New("drain pass incomplete")

// syncWorker drains the offline queue on a schedule. The network monitor
// already fires a drain on every reconnect; the schedule is the safety net
// for operations that failed transiently while the state never changed.
type syncWorker struct {
	engine    Drainer
	interval  time.Duration
	retryBase time.Duration
	logger    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncWorker constructs the periodic drain worker. A zero or negative
// interval falls back to 5 minutes.
func NewSyncWorker(engine Drainer, cfg config.Workers, logger *logger.Logger) Worker {
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &syncWorker{
		engine:    engine,
		interval:  interval,
		retryBase: drainRetryBase,
		logger:    logger,
	}
}

// Start implements Worker. The loop drains once immediately, then once per
// interval.
func (w *syncWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()

		w.drainOnce(loopCtx)

		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				w.drainOnce(loopCtx)
			}
		}
	}()
}

// Stop implements Worker.
func (w *syncWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// drainOnce runs one scheduled drain, retrying an incomplete pass a few
// times with exponential backoff before deferring to the next tick.
func (w *syncWorker) drainOnce(ctx context.Context) {
	backoff := retry.WithMaxRetries(drainRetryMax, retry.NewExponential(w.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if !w.engine.Drain(ctx) {
			return retry.RetryableError(errIncompleteDrain)
		}
		return nil
	})
	if err != nil {
		w.logger.Debug().
			Str("func", "syncWorker.drainOnce").
			Msg("scheduled drain incomplete, deferred to the next tick")
	}
}

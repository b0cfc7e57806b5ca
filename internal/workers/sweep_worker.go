// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/metrics"
	"github.com/tabwave/pushsync/internal/store"
)

// sweepWorker deletes expired cache rows on a schedule. Reads already treat
// expired rows as absent; the sweep only keeps the table from growing.
type sweepWorker struct {
	cache    store.CacheRepository
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweepWorker constructs the cache sweep worker. A zero or negative
// interval falls back to one hour.
func NewSweepWorker(cache store.CacheRepository, cfg config.Workers, logger *logger.Logger) Worker {
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}

	return &sweepWorker{
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

// Start implements Worker. The loop sweeps once immediately, clearing rows
// left over from a previous run, then once per interval.
func (w *sweepWorker) Start(ctx context.Context) {
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

		w.sweepOnce(loopCtx)

		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-t.C:
				w.sweepOnce(loopCtx)
			}
		}
	}()
}

// Stop implements Worker.
func (w *sweepWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

func (w *sweepWorker) sweepOnce(ctx context.Context) {
	removed, err := w.cache.SweepExpired(ctx)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			w.logger.Debug().
				Str("func", "sweepWorker.sweepOnce").
				Msg("sweep skipped, store unavailable")
			return
		}
		w.logger.Err(err).
			Str("func", "sweepWorker.sweepOnce").
			Msg("cache sweep failed")
		return
	}

	metrics.CacheSweepRemoved.Add(float64(removed))
	if removed > 0 {
		w.logger.Info().
			Str("func", "sweepWorker.sweepOnce").
			Int64("removed", removed).
			Msg("expired cache entries removed")
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package netmon

import (
	"context"
	"sync"
	"time"

	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/events"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/metrics"
	"github.com/tabwave/pushsync/models"
)

// DrainFunc is the sync engine hook the monitor fires on a transition into
// online. The bool result is advisory and ignored here.
type DrainFunc func(ctx context.Context) bool

// Monitor owns the probe loop and the network state feed. The state starts
// as offline and is corrected by the first probe, so a daemon that boots
// with connectivity observes an offline→online transition (and therefore an
// initial drain) right after Start.
type Monitor struct {
	prober        Prober
	interval      time.Duration
	slowThreshold time.Duration

	feed *events.StateFeed[models.NetworkState]
	kick chan struct{}

	logger *logger.Logger

	mu     sync.Mutex
	drain  DrainFunc
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor constructs a Monitor over prober. Zero config values fall back
// to a 30s probe interval and a 3s slow threshold.
func NewMonitor(prober Prober, cfg config.Network, logger *logger.Logger) *Monitor {
	interval := cfg.ProbeInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	slowThreshold := cfg.SlowThreshold
	if slowThreshold <= 0 {
		slowThreshold = 3 * time.Second
	}

	return &Monitor{
		prober:        prober,
		interval:      interval,
		slowThreshold: slowThreshold,
		feed:          events.NewStateFeed(models.NetworkOffline),
		kick:          make(chan struct{}, 1),
		logger:        logger,
	}
}

// SetDrainFunc registers the sync engine's drain. Must be called before
// Start; the composition root wires the engine's handler first, then hands
// the drain here, then starts the loop.
func (m *Monitor) SetDrainFunc(fn DrainFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drain = fn
}

// Current returns the cached network state without probing.
func (m *Monitor) Current() models.NetworkState {
	return m.feed.Current()
}

// OnChange registers listener and returns its cancel function. The listener
// immediately receives the current state, then exactly one callback per
// actual transition; duplicate same-state probe results emit nothing.
func (m *Monitor) OnChange(listener func(models.NetworkState)) (cancel func()) {
	return m.feed.Subscribe(listener)
}

// Start launches the probe loop. Idempotent: calling Start on a running
// monitor does nothing. The loop performs one probe immediately, then one
// per interval, plus one per Kick.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		m.probeOnce(loopCtx)

		t := time.NewTicker(m.interval)
		defer t.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-m.kick:
				m.probeOnce(loopCtx)
			case <-t.C:
				m.probeOnce(loopCtx)
			}
		}
	}()
}

// Stop cancels the probe loop and blocks until it has exited. Safe to call
// on a monitor that was never started.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Kick requests an immediate out-of-schedule probe. Used when the worker
// peer reports a connectivity change. Non-blocking; a pending kick absorbs
// further ones.
func (m *Monitor) Kick() {
	select {
	case m.kick <- struct{}{}:
	default:
	}
}

func (m *Monitor) probeOnce(ctx context.Context) {
	probe := m.prober.Probe(ctx)
	m.apply(ctx, m.classify(probe))
}

// classify folds one measurement into a state. Unreachable always wins;
// quality heuristics only downgrade a reachable link to slow.
func (m *Monitor) classify(p models.Probe) models.NetworkState {
	if !p.Reachable {
		return models.NetworkOffline
	}
	if p.RTT > m.slowThreshold {
		return models.NetworkSlow
	}
	switch p.EffectiveType {
	case "2g", "slow-2g":
		return models.NetworkSlow
	}
	return models.NetworkOnline
}

func (m *Monitor) apply(ctx context.Context, next models.NetworkState) {
	prev := m.feed.Current()
	if next == prev {
		return
	}

	m.feed.Set(next)
	metrics.SetNetworkState(next)
	m.logger.Info().
		Str("func", "Monitor.apply").
		Str("from", string(prev)).
		Str("to", string(next)).
		Msg("network state changed")

	if next != models.NetworkOnline {
		return
	}

	m.mu.Lock()
	drain := m.drain
	m.mu.Unlock()
	if drain == nil {
		return
	}

	// Fire-and-forget: a drain failure never propagates into the monitor.
	go drain(ctx)
}

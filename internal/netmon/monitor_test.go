// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package netmon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/models"
)

// scriptProber replays a fixed probe sequence; the last entry repeats
// forever. It counts calls so tests can sequence on probe cycles instead of
// wall-clock sleeps.
type scriptProber struct {
	mu    sync.Mutex
	seq   []models.Probe
	calls int
}

func (s *scriptProber) Probe(context.Context) models.Probe {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.calls
	if i >= len(s.seq) {
		i = len(s.seq) - 1
	}
	s.calls++
	return s.seq[i]
}

func (s *scriptProber) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestMonitor(prober Prober) *Monitor {
	return NewMonitor(prober, config.Network{
		ProbeInterval: 5 * time.Millisecond,
		SlowThreshold: 3 * time.Second,
	}, logger.Nop())
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition never became true: %s", msg)
}

// ── classify ─────────────────────────────────────────────────────────────────

func TestMonitor_Classify(t *testing.T) {
	m := newTestMonitor(nil)

	tests := []struct {
		name  string
		probe models.Probe
		want  models.NetworkState
	}{
		{"unreachable", models.Probe{Reachable: false}, models.NetworkOffline},
		{"unreachable ignores quality", models.Probe{Reachable: false, EffectiveType: "slow-2g"}, models.NetworkOffline},
		{"fast", models.Probe{Reachable: true, RTT: 40 * time.Millisecond}, models.NetworkOnline},
		{"high rtt", models.Probe{Reachable: true, RTT: 4 * time.Second}, models.NetworkSlow},
		{"2g hint", models.Probe{Reachable: true, RTT: 100 * time.Millisecond, EffectiveType: "2g"}, models.NetworkSlow},
		{"slow-2g hint", models.Probe{Reachable: true, RTT: 100 * time.Millisecond, EffectiveType: "slow-2g"}, models.NetworkSlow},
		{"3g hint is fine", models.Probe{Reachable: true, RTT: 100 * time.Millisecond, EffectiveType: "3g"}, models.NetworkOnline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.classify(tt.probe))
		})
	}
}

// ── transitions ──────────────────────────────────────────────────────────────

func TestMonitor_OnlineTransitionDrainsOnce(t *testing.T) {
	prober := &scriptProber{seq: []models.Probe{
		{Reachable: false},
		{Reachable: true, RTT: 10 * time.Millisecond},
	}}
	m := newTestMonitor(prober)

	var drains atomic.Int32
	m.SetDrainFunc(func(context.Context) bool {
		drains.Add(1)
		return true
	})

	m.Start(context.Background())
	defer m.Stop()

	waitFor(t, func() bool { return prober.callCount() >= 6 }, "six probe cycles")
	waitFor(t, func() bool { return drains.Load() == 1 }, "one drain")

	// Repeated online probes after the transition must not drain again.
	assert.Equal(t, int32(1), drains.Load())
	assert.Equal(t, models.NetworkOnline, m.Current())
}

func TestMonitor_OnChange_ImmediateThenPerTransition(t *testing.T) {
	prober := &scriptProber{seq: []models.Probe{
		{Reachable: true, RTT: 10 * time.Millisecond},
		{Reachable: true, RTT: 10 * time.Millisecond},
		{Reachable: true, RTT: 10 * time.Millisecond},
		{Reachable: false},
	}}
	m := newTestMonitor(prober)

	var mu sync.Mutex
	var got []models.NetworkState
	cancel := m.OnChange(func(st models.NetworkState) {
		mu.Lock()
		got = append(got, st)
		mu.Unlock()
	})
	defer cancel()

	// Immediate replay of the current (pre-Start) state.
	mu.Lock()
	require.Equal(t, []models.NetworkState{models.NetworkOffline}, got)
	mu.Unlock()

	m.Start(context.Background())
	defer m.Stop()

	waitFor(t, func() bool { return prober.callCount() >= 5 }, "five probe cycles")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 3
	}, "offline replay + online + offline")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []models.NetworkState{
		models.NetworkOffline, // immediate
		models.NetworkOnline,  // first probe
		models.NetworkOffline, // fourth probe; duplicates in between coalesced
	}, got)
}

func TestMonitor_StartIsIdempotent(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	prober := proberFunc(func(ctx context.Context) models.Probe {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return models.Probe{Reachable: true, RTT: time.Millisecond}
	})

	m := newTestMonitor(prober)
	m.Start(context.Background())
	m.Start(context.Background())
	m.Start(context.Background())

	time.Sleep(100 * time.Millisecond)
	m.Stop()

	assert.Equal(t, int32(1), maxInFlight.Load(), "a second Start must not spawn a second probe loop")
}

func TestMonitor_StopWithoutStart(t *testing.T) {
	m := newTestMonitor(&scriptProber{seq: []models.Probe{{Reachable: true}}})
	m.Stop() // must not panic or block
}

func TestMonitor_KickForcesImmediateProbe(t *testing.T) {
	prober := &scriptProber{seq: []models.Probe{{Reachable: true, RTT: time.Millisecond}}}
	m := NewMonitor(prober, config.Network{
		ProbeInterval: time.Hour, // only the initial probe and kicks fire
		SlowThreshold: 3 * time.Second,
	}, logger.Nop())

	m.Start(context.Background())
	defer m.Stop()

	waitFor(t, func() bool { return prober.callCount() == 1 }, "initial probe")

	m.Kick()
	waitFor(t, func() bool { return prober.callCount() == 2 }, "kicked probe")
}

type proberFunc func(ctx context.Context) models.Probe

func (f proberFunc) Probe(ctx context.Context) models.Probe { return f(ctx) }

// ── HTTP prober ──────────────────────────────────────────────────────────────

func TestHTTPProber_Reachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
	}))
	defer srv.Close()

	p := NewHTTPProber(srv.URL, time.Second, logger.Nop())
	probe := p.Probe(context.Background())

	assert.True(t, probe.Reachable)
	assert.Greater(t, probe.RTT, time.Duration(0))
}

func TestHTTPProber_ErrorStatusIsStillReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProber(srv.URL, time.Second, logger.Nop())
	assert.True(t, p.Probe(context.Background()).Reachable)
}

func TestHTTPProber_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := NewHTTPProber(srv.URL, time.Second, logger.Nop())
	assert.False(t, p.Probe(context.Background()).Reachable)
}

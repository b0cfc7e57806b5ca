// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package metrics defines the process-wide Prometheus collectors. Collectors
// are package variables so any component can record without plumbing a
// registry; Register attaches them to the default registry once, from the
// composition root.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tabwave/pushsync/models"
)

var (
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pushsync_queue_depth",
		Help: "Pending operations currently in the offline queue.",
	})

	NetworkState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pushsync_network_state",
		Help: "Current network state; the active state's series is 1.",
	}, []string{"state"})

	DrainTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pushsync_drain_total",
		Help: "Completed drain passes by outcome.",
	}, []string{"outcome"})

	OperationsSynced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pushsync_operations_synced_total",
		Help: "Queued operations replayed against the gateway successfully.",
	}, []string{"kind"})

	OperationsEvicted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pushsync_operations_evicted_total",
		Help: "Queued operations dropped after exhausting their retry budget.",
	}, []string{"kind"})

	Badge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pushsync_badge",
		Help: "Pending permission requests shown on the badge.",
	})

	BridgeConnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pushsync_bridge_connects_total",
		Help: "Successful connections to the notification worker peer.",
	})

	CacheSweepRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pushsync_cache_sweep_removed_total",
		Help: "Expired cache rows removed by the sweep worker.",
	})
)

// SetNetworkState flips the network state gauge so that exactly the active
// state's series reads 1.
func SetNetworkState(state models.NetworkState) {
	for _, s := range []models.NetworkState{models.NetworkOnline, models.NetworkOffline, models.NetworkSlow} {
		v := 0.0
		if s == state {
			v = 1
		}
		NetworkState.WithLabelValues(string(s)).Set(v)
	}
}

// Register attaches every collector to the default Prometheus registry.
// Call once at startup; collectors record regardless, registration only
// makes them visible on the /metrics endpoint.
func Register() {
	prometheus.MustRegister(
		QueueDepth,
		NetworkState,
		DrainTotal,
		OperationsSynced, OperationsEvicted,
		Badge,
		BridgeConnects,
		CacheSweepRemoved,
	)
}

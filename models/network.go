// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package models

import "time"

// NetworkState is the tri-state connectivity classification maintained by the
// network monitor. It is process-wide and never persisted.
type NetworkState string

const (
	// NetworkOnline means the probe target is reachable with acceptable
	// latency. Transitioning into this state is the sole trigger for
	// draining the pending-operation queue.
	NetworkOnline NetworkState = "online"

	// NetworkOffline means the probe target is unreachable. Sync drains are
	// refused while in this state.
	NetworkOffline NetworkState = "offline"

	// NetworkSlow means the target is reachable but the connection quality
	// heuristic tripped (round-trip time above the configured threshold, or
	// a throttled effective connection type). Slow is a downgrade of online
	// only; an unreachable link is always classified offline.
	NetworkSlow NetworkState = "slow"
)

// Usable reports whether network calls are worth attempting at all.
// Slow connections are usable, just undesirable.
func (s NetworkState) Usable() bool {
	return s == NetworkOnline || s == NetworkSlow
}

// Probe is one connectivity measurement produced by a prober.
type Probe struct {
	// Reachable is false when the probe request failed outright
	// (timeout, DNS failure, connection refused).
	Reachable bool

	// RTT is the measured round-trip time of the probe request.
	// Meaningless when Reachable is false.
	RTT time.Duration

	// EffectiveType mirrors the platform's effective connection type hint
	// ("4g", "3g", "2g", "slow-2g"). Empty when the platform provides none.
	EffectiveType string
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package workers provides the daemon's background workers: the periodic
// queue drain and the expired-cache sweep. It defines the Worker lifecycle
// interface and a Workers aggregate that starts and stops them as a group.
package workers

import "context"

// Worker is the interface implemented by every background worker.
//
// Start launches the worker's loop and returns immediately; the loop runs
// until ctx is cancelled or Stop is called. Start on a running worker does
// nothing. Stop blocks until the loop has exited and is safe to call on a
// worker that was never started.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}

// Drainer is the slice of the sync engine the sync worker needs.
type Drainer interface {
	// Drain replays the offline queue once and reports whether the pass
	// completed fully.
	Drain(ctx context.Context) bool
}

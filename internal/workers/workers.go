// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package workers

import "context"

// Workers runs a fixed set of workers as a group.
type Workers struct {
	workers []Worker
}

// NewWorkers collects the given workers. Order matters: Start runs them in
// the given order, Stop in reverse.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Start starts every worker.
func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop stops every worker in reverse start order and blocks until all loops
// have exited.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package platform

import (
	"context"
	"sync"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/models"
)

// memoryGate is the daemon's [PermissionGate]. Desktop installs carry no OS
// notification prompt of their own, so the gate starts from the configured
// permission mode and resolves a Request on default to granted. Denied is
// sticky for the process lifetime, matching the platform rule that a denial
// can only be lifted by the user in system settings.
type memoryGate struct {
	mu    sync.Mutex
	state models.Permission

	logger *logger.Logger
}

// NewMemoryGate constructs a gate starting at initial. An unknown initial
// value falls back to default.
func NewMemoryGate(initial models.Permission, logger *logger.Logger) PermissionGate {
	switch initial {
	case models.PermissionGranted, models.PermissionDenied, models.PermissionDefault:
	default:
		initial = models.PermissionDefault
	}
	return &memoryGate{state: initial, logger: logger}
}

func (g *memoryGate) Current(ctx context.Context) models.Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *memoryGate) Request(ctx context.Context) (models.Permission, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == models.PermissionDefault {
		g.state = models.PermissionGranted
		g.logger.Info().
			Str("func", "memoryGate.Request").
			Msg("notification permission granted")
	}

	return g.state, nil
}

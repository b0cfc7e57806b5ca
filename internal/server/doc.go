// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package server runs the daemon's HTTP transport.
//
// It owns the listener lifecycle: startup, stop-signal handling, and
// graceful shutdown of the control API the UI shell talks to.
package server

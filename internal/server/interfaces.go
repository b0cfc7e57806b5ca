// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package server

// Server is the lifecycle contract for the transport server managed by this
// package.
//
// Implementations block in [Server.RunServer] until shutdown is requested
// and release resources in [Server.Shutdown].
type Server interface {
	// RunServer starts serving requests and blocks until the server stops.
	// It returns a non-nil error when serving failed (for example when the
	// listen address is already taken), nil after a clean shutdown.
	RunServer() error

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type httpServer struct {
	server *http.Server
	logger *logger.Logger
}

func newHTTPServer(router http.Handler, cfg config.HTTP, logger *logger.Logger) *httpServer {
	return &httpServer{
		server: &http.Server{
			Addr:              cfg.Address,
			Handler:           router,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: logger,
	}
}

// RunServer blocks in ListenAndServe. It returns nil after a graceful
// Shutdown and the serve error otherwise.
func (h *httpServer) RunServer() error {
	err := h.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.logger.Error().Err(err).Msg("HTTP server ListenAndServe")
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within shutdownTimeout. Websocket
// connections are hijacked from the server and die with the process
// instead.
func (h *httpServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error().Err(err).Msg("HTTP server Shutdown")
	}
}

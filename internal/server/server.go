// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/logger"
)

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

// NewServer creates the control-API server around router. The listen
// address comes from cfg; an empty address is a configuration error.
func NewServer(router http.Handler, cfg config.HTTP, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if cfg.Address == "" {
		return nil, errNoListenAddress
	}

	return &server{
		httpServer: newHTTPServer(router, cfg, logger),
		logger:     logger,
	}, nil
}

// RunServer serves until a stop signal arrives, then shuts down gracefully.
func (s *server) RunServer() error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	s.logger.Info().Str("address", s.httpServer.server.Addr).Msg("Launching HTTP server")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.RunServer()
	}()

	select {
	case err := <-serveErr:
		// ListenAndServe failed before any signal; nothing to drain.
		return err
	case <-ctx.Done():
	}

	s.Shutdown()
	<-serveErr

	s.logger.Info().Msg("server shut down gracefully")

	return nil
}

func (s *server) Shutdown() {
	s.httpServer.Shutdown()
}

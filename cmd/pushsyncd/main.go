// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package main

import (
	"fmt"

	"github.com/tabwave/pushsync/internal/adapter"
	"github.com/tabwave/pushsync/internal/bridge"
	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/daemon"
	"github.com/tabwave/pushsync/internal/httpapi"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/metrics"
	"github.com/tabwave/pushsync/internal/netmon"
	"github.com/tabwave/pushsync/internal/platform"
	"github.com/tabwave/pushsync/internal/server"
	"github.com/tabwave/pushsync/internal/service"
	"github.com/tabwave/pushsync/internal/session"
	"github.com/tabwave/pushsync/internal/store"
	"github.com/tabwave/pushsync/internal/workers"
	"github.com/tabwave/pushsync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	version := buildVersion
	printBuildInfo()

	log := logger.NewLogger("pushsyncd")

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if version != "" {
		cfg.App.Version = version
	}
	if cfg.App.LogFile != "" {
		log = logger.NewFileLogger("pushsyncd", cfg.App.LogFile)
	}

	log.Debug().Any("config", cfg).Msg("received configs")
	log.Info().Str("version", cfg.App.Version).Msg("starting pushsync daemon")

	metrics.Register()

	storages := store.NewStorages(cfg.Storage, log)
	defer storages.Close()

	tokens := adapter.NewFileTokenSource(cfg.Gateway.TokenFile, log)
	gateway, err := adapter.NewHTTPServerAdapter(adapter.HTTPClientConfig{
		BaseURL: cfg.Gateway.BaseURL,
		Timeout: cfg.Gateway.Timeout,
	}, tokens, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating gateway adapter")
	}

	prober := netmon.NewHTTPProber(cfg.Network.ProbeURL, cfg.Gateway.Timeout, log)
	monitor := netmon.NewMonitor(prober, cfg.Network, log)

	registrar := platform.NewWebPushRegistrar(cfg.App.PushEndpointBase, cfg.App.DataDir, log)
	gate := platform.NewMemoryGate(models.Permission(cfg.App.PermissionMode), log)

	var (
		link     *bridge.Bridge
		notifier = platform.NewNoopNotifier(log)
	)
	if cfg.Bridge.URL != "" {
		link = bridge.NewBridge(cfg.Bridge, log)
		notifier = link
	}

	sessions := session.NewStore(log)

	services := service.NewServices(storages, gateway, registrar, gate, notifier, monitor, sessions, cfg.App, log)

	workerPool := workers.NewWorkers(
		workers.NewSyncWorker(services.Engine, cfg.Workers, log),
		workers.NewSweepWorker(storages.Cache, cfg.Workers, log),
	)

	handlers := httpapi.NewHandler(services, sessions, monitor, storages.PendingOperations, cfg.HTTP, log)

	srv, err := server.NewServer(handlers.Init(), cfg.HTTP, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	app := daemon.NewApp(services, monitor, link, workerPool, srv, log)

	if err := app.Run(); err != nil {
		log.Fatal().Err(err).Msg("daemon run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}

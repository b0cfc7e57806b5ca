// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-listen control API address in format [host]:[port]
//	-api-token static bearer token guarding the control API
//	-gateway session API base URL
//	-gateway-timeout outbound request timeout (e.g., "15s")
//	-token-file bearer credential file path
//	-d database DSN (postgres:// URL or sqlite file path)
//	-no-storage disable the durable store
//	-data-dir local state directory
//	-platform client flavour label
//	-permission-mode initial notification permission (default/granted/denied)
//	-push-endpoint-base push delivery service base URL
//	-log-file log file path (empty logs to stdout)
//	-bridge-url notification worker peer websocket URL
//	-probe-url connectivity probe target
//	-probe-interval probe cadence (e.g., "30s")
//	-slow-threshold slow-link round-trip threshold (e.g., "3s")
//	-sync-interval periodic drain cadence (e.g., "5m")
//	-sweep-interval cache sweep cadence (e.g., "1h")
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var listenAddress NetAddress
	var apiToken string
	var gatewayBaseURL string
	var gatewayTimeout time.Duration
	var tokenFile string
	var databaseDSN string
	var noStorage bool
	var dataDir string
	var platform string
	var permissionMode string
	var pushEndpointBase string
	var logFile string
	var bridgeURL string
	var probeURL string
	var probeInterval time.Duration
	var slowThreshold time.Duration
	var syncInterval time.Duration
	var sweepInterval time.Duration
	var jsonConfigPath string

	flag.Var(&listenAddress, "listen", "Control API address host:port")
	flag.StringVar(&apiToken, "api-token", "", "Control API bearer token")
	flag.StringVar(&gatewayBaseURL, "gateway", "", "Session API base URL")
	flag.DurationVar(&gatewayTimeout, "gateway-timeout", 0, "Outbound request timeout (e.g., 15s)")
	flag.StringVar(&tokenFile, "token-file", "", "Bearer credential file path")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.BoolVar(&noStorage, "no-storage", false, "Disable the durable store")
	flag.StringVar(&dataDir, "data-dir", "", "Local state directory")
	flag.StringVar(&platform, "platform", "", "Client flavour label")
	flag.StringVar(&permissionMode, "permission-mode", "", "Initial notification permission")
	flag.StringVar(&pushEndpointBase, "push-endpoint-base", "", "Push delivery service base URL")
	flag.StringVar(&logFile, "log-file", "", "Log file path")
	flag.StringVar(&bridgeURL, "bridge-url", "", "Worker peer websocket URL")
	flag.StringVar(&probeURL, "probe-url", "", "Connectivity probe target")
	flag.DurationVar(&probeInterval, "probe-interval", 0, "Probe cadence (e.g., 30s)")
	flag.DurationVar(&slowThreshold, "slow-threshold", 0, "Slow-link round-trip threshold (e.g., 3s)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Periodic drain cadence (e.g., 5m)")
	flag.DurationVar(&sweepInterval, "sweep-interval", 0, "Cache sweep cadence (e.g., 1h)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			Platform:         platform,
			DataDir:          dataDir,
			PermissionMode:   permissionMode,
			PushEndpointBase: pushEndpointBase,
			LogFile:          logFile,
		},
		Storage: Storage{
			Disabled: noStorage,
			DB: StorageDB{
				DSN: databaseDSN,
			},
		},
		Gateway: Gateway{
			BaseURL:   gatewayBaseURL,
			Timeout:   gatewayTimeout,
			TokenFile: tokenFile,
		},
		Network: Network{
			ProbeURL:      probeURL,
			ProbeInterval: probeInterval,
			SlowThreshold: slowThreshold,
		},
		Bridge: Bridge{
			URL: bridgeURL,
		},
		HTTP: HTTP{
			Address: listenAddress.String(),
			Token:   apiToken,
		},
		Workers: Workers{
			SyncInterval:  syncInterval,
			SweepInterval: sweepInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns the empty string so the merge
// treats the flag as unset.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}

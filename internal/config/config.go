// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the daemon.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, an optional JSON file and
// the built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: the client flavour label, the
	// state directory and the notification permission bootstrap.
	App App `envPrefix:"APP_"`

	// Storage holds the durable-store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Gateway holds the connection settings for the remote session API.
	Gateway Gateway `envPrefix:"GATEWAY_"`

	// Network holds the connectivity-probe settings.
	Network Network `envPrefix:"NETWORK_"`

	// Bridge holds the notification worker peer settings.
	Bridge Bridge `envPrefix:"BRIDGE_"`

	// HTTP holds the local control API settings.
	HTTP HTTP `envPrefix:"HTTP_"`

	// Workers holds the background worker schedule.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged beneath the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// Platform labels this client's registrations server-side
	// ("desktop", "cli", "web").
	// Env: APP_PLATFORM
	Platform string `env:"PLATFORM"`

	// DataDir is the directory holding the daemon's local state: the
	// sqlite database, the push registration file and, by default, the
	// credential file.
	// Env: APP_DATA_DIR
	DataDir string `env:"DATA_DIR"`

	// PermissionMode seeds the notification permission gate
	// ("default", "granted", "denied"). Desktop installs have no OS prompt
	// of their own, so the initial state comes from configuration.
	// Env: APP_PERMISSION_MODE
	PermissionMode string `env:"PERMISSION_MODE"`

	// PushEndpointBase is the push delivery service's base URL under which
	// per-device endpoints are derived. Empty disables push registration
	// entirely; the daemon then reports not_supported.
	// Env: APP_PUSH_ENDPOINT_BASE
	PushEndpointBase string `env:"PUSH_ENDPOINT_BASE"`

	// Version is the semantic version string of the running daemon
	// (e.g. "1.2.3"). Exposed via the control API.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// LogFile redirects daemon logs from stdout into the given file. Set
	// when a UI shell owns the console. Empty keeps logging on stdout.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`
}

// Storage groups the configuration of the durable store.
type Storage struct {
	// Disabled switches the durable store off entirely. The daemon then
	// runs online-only: no operation queue persistence, no cached lists.
	// Env: STORAGE_DISABLED
	Disabled bool `env:"DISABLED"`

	// DB holds the database connection settings.
	DB StorageDB `envPrefix:"DB_"`
}

// StorageDB holds connection settings for the durable store's database.
type StorageDB struct {
	// DSN selects and addresses the backend: a postgres:// URL opens
	// PostgreSQL, anything else is treated as a sqlite file path. Defaults
	// to pushsync.db inside the data directory.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Gateway holds the client settings for the remote session API.
type Gateway struct {
	// BaseURL is the session API's base URL.
	// Env: GATEWAY_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Timeout bounds a single outbound request (e.g. "15s").
	// Env: GATEWAY_TIMEOUT
	Timeout time.Duration `env:"TIMEOUT"`

	// TokenFile is the path of the bearer-credential file maintained by the
	// UI shell's auth layer. Defaults to auth_token inside the data
	// directory.
	// Env: GATEWAY_TOKEN_FILE
	TokenFile string `env:"TOKEN_FILE"`
}

// Network holds the connectivity-probe settings.
type Network struct {
	// ProbeURL is the target of the reachability probe. Defaults to the
	// gateway's health endpoint.
	// Env: NETWORK_PROBE_URL
	ProbeURL string `env:"PROBE_URL"`

	// ProbeInterval is the cadence of the background probe (e.g. "30s").
	// Env: NETWORK_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// SlowThreshold is the round-trip time above which a reachable link is
	// classified slow (e.g. "3s").
	// Env: NETWORK_SLOW_THRESHOLD
	SlowThreshold time.Duration `env:"SLOW_THRESHOLD"`
}

// Bridge holds the notification worker peer settings.
type Bridge struct {
	// URL is the websocket address of the worker peer
	// (e.g. "ws://127.0.0.1:8790/bridge"). Empty disables the bridge; the
	// daemon then drops notification commands with debug logs.
	// Env: BRIDGE_URL
	URL string `env:"URL"`
}

// HTTP holds the local control API settings.
type HTTP struct {
	// Address is the TCP address the control API listens on, in
	// "host:port" format. Loopback by default; exposing it further is the
	// operator's call.
	// Env: HTTP_ADDRESS
	Address string `env:"ADDRESS"`

	// Token optionally guards every /api route with a static bearer token.
	// Empty leaves the API open, which is acceptable on loopback only.
	// Env: HTTP_TOKEN
	Token string `env:"TOKEN"`
}

// Workers holds the background worker schedule.
type Workers struct {
	// SyncInterval is the cadence of the periodic queue drain (e.g. "5m").
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// SweepInterval is the cadence of the expired-cache sweep (e.g. "1h").
	// Env: WORKERS_SWEEP_INTERVAL
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the daemon configuration
// from all available sources. An earlier source wins for any field it sets:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}

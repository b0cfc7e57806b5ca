// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// defaultConfig returns the built-in fallback merged beneath every other
// source.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			Platform:       "desktop",
			DataDir:        defaultDataDir(),
			PermissionMode: "default",
			Version:        "dev",
		},
		Gateway: Gateway{
			BaseURL: "https://api.tabwave.com",
			Timeout: 15 * time.Second,
		},
		Network: Network{
			ProbeInterval: 30 * time.Second,
			SlowThreshold: 3 * time.Second,
		},
		HTTP: HTTP{
			Address: "127.0.0.1:8787",
		},
		Workers: Workers{
			SyncInterval:  5 * time.Minute,
			SweepInterval: time.Hour,
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pushsync")
	}
	return ".pushsync"
}

// normalize fills the fields whose defaults depend on other fields. It runs
// after merging, so the inputs are already final.
func (cfg *StructuredConfig) normalize() {
	if cfg.Network.ProbeURL == "" && cfg.Gateway.BaseURL != "" {
		cfg.Network.ProbeURL = strings.TrimRight(cfg.Gateway.BaseURL, "/") + "/v1/health"
	}
	if cfg.Storage.DB.DSN == "" && cfg.App.DataDir != "" {
		cfg.Storage.DB.DSN = filepath.Join(cfg.App.DataDir, "pushsync.db")
	}
	if cfg.Gateway.TokenFile == "" && cfg.App.DataDir != "" {
		cfg.Gateway.TokenFile = filepath.Join(cfg.App.DataDir, "auth_token")
	}
}

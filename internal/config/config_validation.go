// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package config

import "fmt"

// validate checks that the merged config is complete enough to start the
// daemon. It is called after normalize, so derived fields are already filled.
func (cfg *StructuredConfig) validate() error {
	if err := cfg.App.validate(); err != nil {
		return err
	}
	if err := cfg.Storage.validate(); err != nil {
		return err
	}
	if err := cfg.Gateway.validate(); err != nil {
		return err
	}
	if err := cfg.Network.validate(); err != nil {
		return err
	}
	if err := cfg.HTTP.validate(); err != nil {
		return err
	}
	return cfg.Workers.validate()
}

func (app App) validate() error {
	switch app.PermissionMode {
	case "", "default", "granted", "denied":
	default:
		return fmt.Errorf("%w: unknown permission mode %q", ErrInvalidAppConfigs, app.PermissionMode)
	}
	return nil
}

func (s Storage) validate() error {
	if !s.Disabled && s.DB.DSN == "" {
		return fmt.Errorf("%w: database DSN is empty", ErrInvalidStorageConfigs)
	}
	return nil
}

func (g Gateway) validate() error {
	if g.BaseURL == "" {
		return fmt.Errorf("%w: base URL is empty", ErrInvalidGatewayConfigs)
	}
	if g.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidGatewayConfigs)
	}
	return nil
}

func (n Network) validate() error {
	if n.ProbeURL == "" {
		return fmt.Errorf("%w: probe URL is empty", ErrInvalidNetworkConfigs)
	}
	if n.ProbeInterval <= 0 {
		return fmt.Errorf("%w: probe interval must be positive", ErrInvalidNetworkConfigs)
	}
	if n.SlowThreshold <= 0 {
		return fmt.Errorf("%w: slow threshold must be positive", ErrInvalidNetworkConfigs)
	}
	return nil
}

func (h HTTP) validate() error {
	if h.Address == "" {
		return fmt.Errorf("%w: listen address is empty", ErrInvalidHTTPConfigs)
	}
	return nil
}

func (w Workers) validate() error {
	if w.SyncInterval <= 0 {
		return fmt.Errorf("%w: sync interval must be positive", ErrInvalidWorkerConfigs)
	}
	if w.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep interval must be positive", ErrInvalidWorkerConfigs)
	}
	return nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration wraps time.Duration so JSON configs can carry either a number of
// nanoseconds or a string like "15s".
type Duration struct {
	time.Duration
}

// StructuredJSONConfig mirrors StructuredConfig for the JSON file source.
type StructuredJSONConfig struct {
	App     JSONApp     `json:"app"`
	Storage JSONStorage `json:"storage"`
	Gateway JSONGateway `json:"gateway"`
	Network JSONNetwork `json:"network"`
	Bridge  JSONBridge  `json:"bridge"`
	HTTP    JSONHTTP    `json:"http"`
	Workers JSONWorkers `json:"workers"`
}

// JSONApp mirrors the App section.
type JSONApp struct {
	Platform         string `json:"platform"`
	DataDir          string `json:"data_dir"`
	PermissionMode   string `json:"permission_mode"`
	PushEndpointBase string `json:"push_endpoint_base"`
	Version          string `json:"version"`
	LogFile          string `json:"log_file"`
}

// JSONStorage mirrors the Storage section.
type JSONStorage struct {
	Disabled bool          `json:"disabled"`
	DB       JSONStorageDB `json:"db"`
}

// JSONStorageDB mirrors the StorageDB section.
type JSONStorageDB struct {
	DSN string `json:"dsn"`
}

// JSONGateway mirrors the Gateway section.
type JSONGateway struct {
	BaseURL   string   `json:"base_url"`
	Timeout   Duration `json:"timeout"`
	TokenFile string   `json:"token_file"`
}

// JSONNetwork mirrors the Network section.
type JSONNetwork struct {
	ProbeURL      string   `json:"probe_url"`
	ProbeInterval Duration `json:"probe_interval"`
	SlowThreshold Duration `json:"slow_threshold"`
}

// JSONBridge mirrors the Bridge section.
type JSONBridge struct {
	URL string `json:"url"`
}

// JSONHTTP mirrors the HTTP section.
type JSONHTTP struct {
	Address string `json:"address"`
	Token   string `json:"token"`
}

// JSONWorkers mirrors the Workers section.
type JSONWorkers struct {
	SyncInterval  Duration `json:"sync_interval"`
	SweepInterval Duration `json:"sweep_interval"`
}

// parseJSON reads the file at the given path and converts it into a
// StructuredConfig for the merge.
func parseJSON(path string) (*StructuredConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading json config file: %w", err)
	}

	jsonCfg := &StructuredJSONConfig{}
	if err := json.Unmarshal(data, jsonCfg); err != nil {
		return nil, fmt.Errorf("error parsing json config file: %w", err)
	}

	return &StructuredConfig{
		App: App{
			Platform:         jsonCfg.App.Platform,
			DataDir:          jsonCfg.App.DataDir,
			PermissionMode:   jsonCfg.App.PermissionMode,
			PushEndpointBase: jsonCfg.App.PushEndpointBase,
			Version:          jsonCfg.App.Version,
			LogFile:          jsonCfg.App.LogFile,
		},
		Storage: Storage{
			Disabled: jsonCfg.Storage.Disabled,
			DB: StorageDB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Gateway: Gateway{
			BaseURL:   jsonCfg.Gateway.BaseURL,
			Timeout:   jsonCfg.Gateway.Timeout.Duration,
			TokenFile: jsonCfg.Gateway.TokenFile,
		},
		Network: Network{
			ProbeURL:      jsonCfg.Network.ProbeURL,
			ProbeInterval: jsonCfg.Network.ProbeInterval.Duration,
			SlowThreshold: jsonCfg.Network.SlowThreshold.Duration,
		},
		Bridge: Bridge{
			URL: jsonCfg.Bridge.URL,
		},
		HTTP: HTTP{
			Address: jsonCfg.HTTP.Address,
			Token:   jsonCfg.HTTP.Token,
		},
		Workers: Workers{
			SyncInterval:  jsonCfg.Workers.SyncInterval.Duration,
			SweepInterval: jsonCfg.Workers.SweepInterval.Duration,
		},
	}, nil
}

// MarshalJSON renders the duration in its string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts either a JSON number of nanoseconds or a duration
// string such as "1h30m".
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("error parsing duration %q: %w", value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return errors.New("invalid duration value")
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package config

import "errors"

var (
	// ErrInvalidAppConfigs signals invalid application section data.
	ErrInvalidAppConfigs = errors.New("invalid app configs")
	// ErrInvalidStorageConfigs signals invalid durable store section data.
	ErrInvalidStorageConfigs = errors.New("invalid storage configs")
	// ErrInvalidGatewayConfigs signals invalid session API section data.
	ErrInvalidGatewayConfigs = errors.New("invalid gateway configs")
	// ErrInvalidNetworkConfigs signals invalid connectivity probe section data.
	ErrInvalidNetworkConfigs = errors.New("invalid network configs")
	// ErrInvalidHTTPConfigs signals invalid control API section data.
	ErrInvalidHTTPConfigs = errors.New("invalid http configs")
	// ErrInvalidWorkerConfigs signals invalid background worker section data.
	ErrInvalidWorkerConfigs = errors.New("invalid worker configs")
)

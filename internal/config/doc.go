// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package config provides configuration loading, merging, and validation
// facilities for the daemon.
//
// Configuration is assembled from multiple sources; an earlier source wins
// for any field it sets:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file (path taken from sources 1 and 2)
//  4. Built-in defaults
//
// The entry point is [GetStructuredConfig].
package config

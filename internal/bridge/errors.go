// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package bridge

import "errors"

// ErrNotConnected is returned by outbound commands while no worker peer
// connection is established.
var ErrNotConnected = errors.New("worker peer is not connected")

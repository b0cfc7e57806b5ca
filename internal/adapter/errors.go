// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package adapter

import "errors"

var (
	// ErrNoCredential means the token source has no usable bearer credential.
	ErrNoCredential = errors.New("no credential available")

	// ErrUnauthorized maps HTTP 401/403: the gateway rejected the credential.
	ErrUnauthorized = errors.New("credential rejected")

	// ErrBadRequest maps the remaining 4xx statuses: the request itself is
	// invalid and retrying it unchanged cannot succeed.
	ErrBadRequest = errors.New("bad request")

	// ErrServerError maps 5xx statuses and malformed gateway responses.
	ErrServerError = errors.New("server error")

	// ErrUnreachable means the gateway could not be reached at all.
	ErrUnreachable = errors.New("server unreachable")
)

// IsTransient reports whether err is worth retrying on a later sync pass.
// Transient failures make an operation queue-eligible; the rest fail fast.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnreachable) ||
		errors.Is(err, ErrServerError) ||
		errors.Is(err, ErrNoCredential)
}

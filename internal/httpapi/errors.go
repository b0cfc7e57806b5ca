// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package httpapi

import "errors"

// Sentinel errors used by the bearer-token middleware when parsing the
// "Authorization" HTTP header. Callers can match against them with
// [errors.Is].
var (
	// ErrEmptyAuthorizationHeader is returned when the header is absent
	// while a control-API token is configured.
	ErrEmptyAuthorizationHeader = errors.New("empty authorization header")

	// ErrInvalidAuthorizationHeader is returned when the header does not
	// follow the "<scheme> <token>" form.
	ErrInvalidAuthorizationHeader = errors.New("invalid authorization header")

	// ErrEmptyToken is returned when the scheme is present but the token
	// part is an empty string.
	ErrEmptyToken = errors.New("empty token")

	// ErrWrongToken is returned when the presented token does not match
	// the configured one.
	ErrWrongToken = errors.New("wrong token")
)

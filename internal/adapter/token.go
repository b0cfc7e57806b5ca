// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package adapter

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tabwave/pushsync/internal/logger"
)

// fileTokenSource reads the bearer credential from a file maintained by the
// host application's auth layer. The token is cached together with the file's
// modification time, so steady-state calls cost one stat. A credential that
// parses as a JWT with an elapsed exp claim is treated as missing; opaque
// non-JWT tokens are passed through as-is.
type fileTokenSource struct {
	path   string
	logger *logger.Logger

	now func() time.Time

	mu        sync.Mutex
	cached    string
	expiresAt time.Time // zero when the token carries no exp claim
	modTime   time.Time
}

// NewFileTokenSource constructs a [TokenSource] backed by the credential file
// at path.
func NewFileTokenSource(path string, logger *logger.Logger) TokenSource {
	return &fileTokenSource{path: path, logger: logger, now: time.Now}
}

func (s *fileTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: credential file %s: %v", ErrNoCredential, s.path, err)
	}

	if s.cached == "" || !info.ModTime().Equal(s.modTime) {
		if err := s.reload(info.ModTime()); err != nil {
			return "", err
		}
	}

	if !s.expiresAt.IsZero() && !s.now().Before(s.expiresAt) {
		return "", fmt.Errorf("%w: credential expired at %s", ErrNoCredential, s.expiresAt.Format(time.RFC3339))
	}

	return s.cached, nil
}

func (s *fileTokenSource) reload(modTime time.Time) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("%w: read credential file: %v", ErrNoCredential, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return fmt.Errorf("%w: credential file %s is empty", ErrNoCredential, s.path)
	}

	s.cached = token
	s.expiresAt = tokenExpiry(token)
	s.modTime = modTime

	s.logger.Debug().
		Str("func", "fileTokenSource.reload").
		Bool("has_expiry", !s.expiresAt.IsZero()).
		Msg("credential reloaded")

	return nil
}

// tokenExpiry extracts the exp claim without verifying the signature.
// Verification is the gateway's job; locally the claim only pre-empts
// requests that are guaranteed to fail with 401.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}

// StaticTokenSource returns the same token on every call. Intended for tests
// and development setups where the credential is injected directly.
type StaticTokenSource string

func (s StaticTokenSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoCredential
	}
	return string(s), nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabwave/pushsync/internal/logger"
)

func makeJWT(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "account-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func writeCredential(t *testing.T, token string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "credential")
	require.NoError(t, os.WriteFile(path, []byte(token+"\n"), 0600))
	return path
}

func TestFileTokenSource_ReadsAndTrims(t *testing.T) {
	token := makeJWT(t, time.Now().Add(time.Hour))
	src := NewFileTokenSource(writeCredential(t, token), logger.Nop())

	got, err := src.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestFileTokenSource_MissingFile(t *testing.T) {
	src := NewFileTokenSource(filepath.Join(t.TempDir(), "absent"), logger.Nop())

	_, err := src.Token(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestFileTokenSource_EmptyFile(t *testing.T) {
	src := NewFileTokenSource(writeCredential(t, ""), logger.Nop())

	_, err := src.Token(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestFileTokenSource_ExpiredJWTIsMissing(t *testing.T) {
	token := makeJWT(t, time.Now().Add(-time.Hour))
	src := NewFileTokenSource(writeCredential(t, token), logger.Nop())

	_, err := src.Token(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestFileTokenSource_OpaqueTokenPassesThrough(t *testing.T) {
	src := NewFileTokenSource(writeCredential(t, "opaque-credential"), logger.Nop())

	got, err := src.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "opaque-credential", got)
}

func TestFileTokenSource_PicksUpRotation(t *testing.T) {
	expired := makeJWT(t, time.Now().Add(-time.Hour))
	path := writeCredential(t, expired)
	src := NewFileTokenSource(path, logger.Nop())

	_, err := src.Token(context.Background())
	require.ErrorIs(t, err, ErrNoCredential)

	fresh := makeJWT(t, time.Now().Add(time.Hour))
	require.NoError(t, os.WriteFile(path, []byte(fresh), 0600))
	// Force a distinct mtime; some filesystems round to whole seconds.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	got, err := src.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}

func TestStaticTokenSource(t *testing.T) {
	got, err := StaticTokenSource("tok").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	_, err = StaticTokenSource("").Token(context.Background())
	assert.ErrorIs(t, err, ErrNoCredential)
}

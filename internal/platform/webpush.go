// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package platform

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/models"
)

const registrationFileName = "push_registration.json"

// registrationRecord is the on-disk form of a push registration. It holds
// the full credential, private key included; the public half is what leaves
// the process inside a [models.PushSubscription].
type registrationRecord struct {
	Endpoint             string    `json:"endpoint"`
	P256DH               string    `json:"p256dh"`
	Auth                 string    `json:"auth"`
	PrivateKey           string    `json:"privateKey"`
	ApplicationServerKey string    `json:"applicationServerKey"`
	CreatedAt            time.Time `json:"createdAt"`
}

// webpushRegistrar is the real [Registrar]. It plays the part a browser's
// push service plays for a web page: it mints the per-device credential
// (P-256 ECDH key pair + 16-byte auth secret), derives a unique endpoint
// under the configured delivery base URL, and keeps the registration in a
// state file so it survives restarts. The push gateway learns about the
// endpoint when the subscription manager posts it.
type webpushRegistrar struct {
	endpointBase string
	statePath    string

	mu     sync.Mutex
	logger *logger.Logger
}

// NewWebPushRegistrar constructs a registrar persisting its registration
// under dataDir. endpointBase is the push delivery service's base URL; when
// empty the registrar reports unsupported.
func NewWebPushRegistrar(endpointBase, dataDir string, logger *logger.Logger) Registrar {
	return &webpushRegistrar{
		endpointBase: strings.TrimRight(strings.TrimSpace(endpointBase), "/"),
		statePath:    filepath.Join(dataDir, registrationFileName),
		logger:       logger,
	}
}

func (r *webpushRegistrar) Supported() bool {
	return r.endpointBase != ""
}

func (r *webpushRegistrar) Get(ctx context.Context) (models.PushSubscription, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.load()
	if !ok {
		return models.PushSubscription{}, false, nil
	}
	return rec.subscription(), true, nil
}

func (r *webpushRegistrar) Subscribe(ctx context.Context, applicationServerKey string) (models.PushSubscription, error) {
	if !r.Supported() {
		return models.PushSubscription{}, fmt.Errorf("push registration is not supported in this environment")
	}
	if applicationServerKey == "" {
		return models.PushSubscription{}, fmt.Errorf("application server key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.load(); ok {
		if rec.ApplicationServerKey != applicationServerKey {
			return models.PushSubscription{}, fmt.Errorf("already registered with a different application server key")
		}
		return rec.subscription(), nil
	}

	rec, err := r.mint(applicationServerKey)
	if err != nil {
		return models.PushSubscription{}, err
	}
	if err := r.save(rec); err != nil {
		return models.PushSubscription{}, err
	}

	r.logger.Info().
		Str("func", "webpushRegistrar.Subscribe").
		Str("endpoint", rec.Endpoint).
		Msg("push registration created")

	return rec.subscription(), nil
}

func (r *webpushRegistrar) Unsubscribe(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.statePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove push registration: %w", err)
	}
	return nil
}

// mint creates fresh credential material: an ECDH P-256 key pair whose
// public point becomes p256dh, a random auth secret, and an endpoint unique
// to this registration.
func (r *webpushRegistrar) mint(applicationServerKey string) (registrationRecord, error) {
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return registrationRecord{}, fmt.Errorf("generate registration key: %w", err)
	}

	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		return registrationRecord{}, fmt.Errorf("generate auth secret: %w", err)
	}

	return registrationRecord{
		Endpoint:             r.endpointBase + "/" + uuid.NewString(),
		P256DH:               base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:                 base64.RawURLEncoding.EncodeToString(auth),
		PrivateKey:           base64.RawURLEncoding.EncodeToString(key.Bytes()),
		ApplicationServerKey: applicationServerKey,
		CreatedAt:            time.Now().UTC(),
	}, nil
}

// load reads the state file. A missing or unreadable file reads as "no
// registration"; a corrupt one is logged and likewise treated as absent so
// the next Subscribe can overwrite it.
func (r *webpushRegistrar) load() (registrationRecord, bool) {
	data, err := os.ReadFile(r.statePath)
	if err != nil {
		return registrationRecord{}, false
	}

	var rec registrationRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Endpoint == "" {
		r.logger.Warn().
			Str("func", "webpushRegistrar.load").
			Str("path", r.statePath).
			Msg("discarding corrupt push registration state")
		return registrationRecord{}, false
	}

	return rec, true
}

func (r *webpushRegistrar) save(rec registrationRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode push registration: %w", err)
	}
	if err := os.WriteFile(r.statePath, data, 0600); err != nil {
		return fmt.Errorf("write push registration: %w", err)
	}
	return nil
}

func (rec registrationRecord) subscription() models.PushSubscription {
	return models.PushSubscription{
		Endpoint: rec.Endpoint,
		Keys: models.SubscriptionKeys{
			P256DH: rec.P256DH,
			Auth:   rec.Auth,
		},
	}
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tabwave/pushsync/internal/adapter"
	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/events"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/metrics"
	"github.com/tabwave/pushsync/internal/platform"
	"github.com/tabwave/pushsync/internal/store"
	"github.com/tabwave/pushsync/models"
)

const (
	subscriptionsCacheKey = "server_subscriptions"
	subscriptionsCacheTTL = 5 * time.Minute

	defaultPlatformLabel = "desktop"
)

// subscriptionManager serializes every lifecycle operation behind one mutex:
// a subscribe never interleaves with an unsubscribe, and status listeners
// observe operations in the order they ran. Queue replay (HandleOperation)
// stays outside the mutex so a slow drain never blocks Status calls.
type subscriptionManager struct {
	registrar platform.Registrar
	gate      platform.PermissionGate
	server    adapter.ServerAdapter
	subs      store.SubscriptionRepository
	meta      store.MetaRepository
	pending   store.PendingOperationRepository
	cache     store.CacheRepository
	network   NetworkSource

	platformLabel string
	logger        *logger.Logger

	mu        sync.Mutex
	deviceID  string
	vapidKey  string
	lastState models.SubscriptionState
	feed      *events.Feed[models.SubscriptionStatus]
}

// NewSubscriptionManager wires the push-subscription lifecycle over the
// platform provider, the server adapter and the durable store. cfg.Platform
// labels this client's registrations server-side.
func NewSubscriptionManager(
	registrar platform.Registrar,
	gate platform.PermissionGate,
	server adapter.ServerAdapter,
	storages *store.Storages,
	network NetworkSource,
	cfg config.App,
	logger *logger.Logger,
) SubscriptionManager {
	label := cfg.Platform
	if label == "" {
		label = defaultPlatformLabel
	}

	return &subscriptionManager{
		registrar:     registrar,
		gate:          gate,
		server:        server,
		subs:          storages.Subscriptions,
		meta:          storages.Meta,
		pending:       storages.PendingOperations,
		cache:         storages.Cache,
		network:       network,
		platformLabel: label,
		logger:        logger,
		feed:          events.NewFeed[models.SubscriptionStatus](),
	}
}

// IsSupported implements SubscriptionManager.
func (m *subscriptionManager) IsSupported() bool {
	return m.registrar.Supported()
}

// DeviceID implements SubscriptionManager.
func (m *subscriptionManager) DeviceID(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deviceIDLocked(ctx)
}

// deviceIDLocked resolves the device id memory-first, then from the store,
// then by minting and persisting a fresh UUID. The fallback id is returned,
// never cached, when the store cannot take part; a store that comes back
// later still gets a real id.
func (m *subscriptionManager) deviceIDLocked(ctx context.Context) string {
	if m.deviceID != "" {
		return m.deviceID
	}

	value, ok, err := m.meta.Get(ctx, store.MetaKeyDeviceID)
	if err != nil {
		if !errors.Is(err, store.ErrUnavailable) {
			m.logger.Err(err).Str("func", "subscriptionManager.deviceIDLocked").Msg("reading device id failed")
		}
		return models.FallbackDeviceID
	}
	if ok && value != "" {
		m.deviceID = value
		return value
	}

	id := uuid.NewString()
	if err := m.meta.Set(ctx, store.MetaKeyDeviceID, id); err != nil {
		if !errors.Is(err, store.ErrUnavailable) {
			m.logger.Err(err).Str("func", "subscriptionManager.deviceIDLocked").Msg("persisting device id failed")
		}
		return models.FallbackDeviceID
	}

	m.logger.Info().Str("func", "subscriptionManager.deviceIDLocked").Str("deviceID", id).Msg("device id generated")
	m.deviceID = id
	return id
}

// VapidPublicKey implements SubscriptionManager.
func (m *subscriptionManager) VapidPublicKey(ctx context.Context) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vapidKeyLocked(ctx)
}

func (m *subscriptionManager) vapidKeyLocked(ctx context.Context) (string, bool) {
	if m.vapidKey != "" {
		return m.vapidKey, true
	}

	if value, ok, err := m.meta.Get(ctx, store.MetaKeyVapidPublicKey); err == nil && ok && value != "" {
		m.vapidKey = value
		return value, true
	}

	key, err := m.server.GetVapidKey(ctx)
	if err != nil {
		m.logger.Debug().Err(err).Str("func", "subscriptionManager.vapidKeyLocked").Msg("vapid key fetch failed")
		return "", false
	}

	m.vapidKey = key
	if err := m.meta.Set(ctx, store.MetaKeyVapidPublicKey, key); err != nil && !errors.Is(err, store.ErrUnavailable) {
		m.logger.Err(err).Str("func", "subscriptionManager.vapidKeyLocked").Msg("caching vapid key failed")
	}
	return key, true
}

// Status implements SubscriptionManager.
func (m *subscriptionManager) Status(ctx context.Context) models.SubscriptionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked(ctx)
}

func (m *subscriptionManager) statusLocked(ctx context.Context) models.SubscriptionStatus {
	if !m.registrar.Supported() {
		return models.SubscriptionStatus{State: models.StateNotSupported}
	}

	switch m.gate.Current(ctx) {
	case models.PermissionDefault:
		return models.SubscriptionStatus{State: models.StatePermissionDefault}
	case models.PermissionDenied:
		return models.SubscriptionStatus{State: models.StatePermissionDenied}
	}

	deviceID := m.deviceIDLocked(ctx)

	sub, found, err := m.registrar.Get(ctx)
	if err != nil {
		// The stored record stands in only when the platform itself
		// cannot answer.
		record, recErr := m.subs.GetByDeviceID(ctx, deviceID)
		if recErr != nil {
			return models.SubscriptionStatus{State: models.StateUnsubscribed}
		}
		m.logger.Debug().Err(err).
			Str("func", "subscriptionManager.statusLocked").
			Msg("platform query failed, answering from the stored record")
		return models.SubscriptionStatus{
			State:    models.StateSubscribed,
			Endpoint: record.Endpoint,
			DeviceID: deviceID,
		}
	}
	if !found {
		if _, recErr := m.subs.GetByDeviceID(ctx, deviceID); recErr == nil {
			m.logger.Debug().
				Str("func", "subscriptionManager.statusLocked").
				Msg("stored subscription record is stale, platform reports none")
		}
		return models.SubscriptionStatus{State: models.StateUnsubscribed}
	}

	return models.SubscriptionStatus{
		State:     models.StateSubscribed,
		Endpoint:  sub.Endpoint,
		ExpiresAt: sub.ExpiresAt,
		DeviceID:  deviceID,
	}
}

// RequestPermission implements SubscriptionManager.
func (m *subscriptionManager) RequestPermission(ctx context.Context) (models.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.gate.Current(ctx)
	if current != models.PermissionDefault {
		return current, nil
	}

	granted, err := m.gate.Request(ctx)
	if err != nil {
		return current, fmt.Errorf("request notification permission: %w", err)
	}

	m.publishLocked(m.statusLocked(ctx))
	return granted, nil
}

// Subscribe implements SubscriptionManager.
func (m *subscriptionManager) Subscribe(ctx context.Context, prefs models.Preferences) (models.SubscriptionStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registrar.Supported() {
		return models.SubscriptionStatus{State: models.StateNotSupported}, ErrNotSupported
	}

	permission := m.gate.Current(ctx)
	if permission == models.PermissionDefault {
		requested, err := m.gate.Request(ctx)
		if err != nil {
			return m.statusLocked(ctx), fmt.Errorf("request notification permission: %w", err)
		}
		permission = requested
	}
	if permission == models.PermissionDenied {
		status := models.SubscriptionStatus{State: models.StatePermissionDenied}
		m.publishLocked(status)
		return status, ErrPermissionDenied
	}

	key, ok := m.vapidKeyLocked(ctx)
	if !ok {
		return m.statusLocked(ctx), ErrVapidUnavailable
	}

	sub, found, err := m.registrar.Get(ctx)
	if err != nil {
		return m.statusLocked(ctx), fmt.Errorf("query platform subscription: %w", err)
	}
	if !found {
		sub, err = m.registrar.Subscribe(ctx, key)
		if err != nil {
			return m.statusLocked(ctx), fmt.Errorf("create platform subscription: %w", err)
		}
	}

	deviceID := m.deviceIDLocked(ctx)
	now := time.Now()
	record := models.DeviceSubscription{
		DeviceID:  deviceID,
		Endpoint:  sub.Endpoint,
		P256DH:    sub.Keys.P256DH,
		Auth:      sub.Keys.Auth,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.subs.UpsertByDeviceID(ctx, record); err != nil && !errors.Is(err, store.ErrUnavailable) {
		m.logger.Err(err).Str("func", "subscriptionManager.Subscribe").Msg("persisting subscription record failed")
	}

	encoded, err := EncodePreferences(prefs)
	if err != nil {
		return m.statusLocked(ctx), fmt.Errorf("encode preferences: %w", err)
	}
	req := models.SubscribeRequest{
		Subscription:         sub,
		DeviceID:             deviceID,
		Platform:             m.platformLabel,
		EncryptedPreferences: encoded,
	}
	err = m.syncOrQueue(ctx, models.OperationSubscribe, req, func(ctx context.Context) error {
		_, err := m.server.Subscribe(ctx, req)
		return err
	})
	if err != nil {
		return m.statusLocked(ctx), fmt.Errorf("register subscription with server: %w", err)
	}

	status := m.statusLocked(ctx)
	m.publishLocked(status)
	return status, nil
}

// Unsubscribe implements SubscriptionManager.
func (m *subscriptionManager) Unsubscribe(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registrar.Supported() {
		return nil
	}

	deviceID := m.deviceIDLocked(ctx)

	sub, found, err := m.registrar.Get(ctx)
	if err != nil {
		return fmt.Errorf("query platform subscription: %w", err)
	}
	if !found {
		// Nothing registered platform-side; drop any leftover record.
		if err := m.subs.DeleteByDeviceID(ctx, deviceID); err != nil && !errors.Is(err, store.ErrUnavailable) {
			m.logger.Err(err).Str("func", "subscriptionManager.Unsubscribe").Msg("deleting subscription record failed")
		}
		m.publishLocked(m.statusLocked(ctx))
		return nil
	}

	if err := m.registrar.Unsubscribe(ctx); err != nil {
		return fmt.Errorf("remove platform subscription: %w", err)
	}
	if err := m.subs.DeleteByDeviceID(ctx, deviceID); err != nil && !errors.Is(err, store.ErrUnavailable) {
		m.logger.Err(err).Str("func", "subscriptionManager.Unsubscribe").Msg("deleting subscription record failed")
	}

	req := models.UnsubscribeRequest{DeviceID: deviceID, Endpoint: sub.Endpoint}
	err = m.syncOrQueue(ctx, models.OperationUnsubscribe, req, func(ctx context.Context) error {
		return m.server.Unsubscribe(ctx, req)
	})
	if err != nil {
		return fmt.Errorf("remove subscription from server: %w", err)
	}

	m.publishLocked(m.statusLocked(ctx))
	return nil
}

// UpdatePreferences implements SubscriptionManager.
func (m *subscriptionManager) UpdatePreferences(ctx context.Context, prefs models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	deviceID := m.deviceIDLocked(ctx)

	_, err := m.subs.GetByDeviceID(ctx, deviceID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return ErrNotSubscribed
	case errors.Is(err, store.ErrUnavailable):
		// Cannot cross-check locally; the server record is authoritative.
	default:
		return fmt.Errorf("load subscription record: %w", err)
	}

	encoded, err := EncodePreferences(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	req := models.PreferencesRequest{DeviceID: deviceID, EncryptedPreferences: encoded}
	err = m.syncOrQueue(ctx, models.OperationUpdatePreferences, req, func(ctx context.Context) error {
		return m.server.UpdatePreferences(ctx, req)
	})
	if err != nil {
		return fmt.Errorf("update preferences on server: %w", err)
	}
	return nil
}

// Subscriptions implements SubscriptionManager. The server answer is cached
// for subscriptionsCacheTTL; any state-affecting operation invalidates it.
func (m *subscriptionManager) Subscriptions(ctx context.Context) ([]models.ServerSubscription, error) {
	if raw, ok, err := m.cache.GetIfNotExpired(ctx, subscriptionsCacheKey); err == nil && ok {
		var cached []models.ServerSubscription
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		// A corrupt cache entry falls through to the server.
	}

	subs, err := m.server.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	if raw, err := json.Marshal(subs); err == nil {
		if err := m.cache.Upsert(ctx, subscriptionsCacheKey, raw, subscriptionsCacheTTL); err != nil && !errors.Is(err, store.ErrUnavailable) {
			m.logger.Err(err).Str("func", "subscriptionManager.Subscriptions").Msg("caching subscription list failed")
		}
	}
	return subs, nil
}

// ResyncSubscription implements SubscriptionManager. The worker peer reports
// platform-side registration changes; this reconciles the local record and
// the server with whatever the platform holds now.
func (m *subscriptionManager) ResyncSubscription(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.registrar.Supported() {
		return nil
	}

	deviceID := m.deviceIDLocked(ctx)

	sub, found, err := m.registrar.Get(ctx)
	if err != nil {
		return fmt.Errorf("query platform subscription: %w", err)
	}

	if !found {
		// Registration disappeared behind our back.
		if err := m.subs.DeleteByDeviceID(ctx, deviceID); err != nil && !errors.Is(err, store.ErrUnavailable) {
			m.logger.Err(err).Str("func", "subscriptionManager.ResyncSubscription").Msg("deleting subscription record failed")
		}
		req := models.UnsubscribeRequest{DeviceID: deviceID}
		err = m.syncOrQueue(ctx, models.OperationUnsubscribe, req, func(ctx context.Context) error {
			return m.server.Unsubscribe(ctx, req)
		})
		if err != nil {
			return fmt.Errorf("remove subscription from server: %w", err)
		}
		m.publishLocked(m.statusLocked(ctx))
		return nil
	}

	now := time.Now()
	record := models.DeviceSubscription{
		DeviceID:  deviceID,
		Endpoint:  sub.Endpoint,
		P256DH:    sub.Keys.P256DH,
		Auth:      sub.Keys.Auth,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.subs.UpsertByDeviceID(ctx, record); err != nil && !errors.Is(err, store.ErrUnavailable) {
		m.logger.Err(err).Str("func", "subscriptionManager.ResyncSubscription").Msg("persisting subscription record failed")
	}

	// Preferences are left out so the server keeps the stored set.
	req := models.SubscribeRequest{
		Subscription: sub,
		DeviceID:     deviceID,
		Platform:     m.platformLabel,
	}
	err = m.syncOrQueue(ctx, models.OperationSubscribe, req, func(ctx context.Context) error {
		_, err := m.server.Subscribe(ctx, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("re-register subscription with server: %w", err)
	}

	m.publishLocked(m.statusLocked(ctx))
	return nil
}

// HandleOperation implements SubscriptionManager. It is the engine's
// SyncHandler: a queued operation is decoded by kind and replayed against
// the server adapter. Undecodable payloads and unknown kinds report failure
// and ride the retry budget out.
func (m *subscriptionManager) HandleOperation(ctx context.Context, op models.PendingOperation) (bool, error) {
	switch op.Kind {
	case models.OperationSubscribe:
		var req models.SubscribeRequest
		if err := json.Unmarshal(op.Payload, &req); err != nil {
			return false, fmt.Errorf("decode subscribe payload: %w", err)
		}
		if _, err := m.server.Subscribe(ctx, req); err != nil {
			return false, err
		}
	case models.OperationUnsubscribe:
		var req models.UnsubscribeRequest
		if err := json.Unmarshal(op.Payload, &req); err != nil {
			return false, fmt.Errorf("decode unsubscribe payload: %w", err)
		}
		if err := m.server.Unsubscribe(ctx, req); err != nil {
			return false, err
		}
	case models.OperationUpdatePreferences:
		var req models.PreferencesRequest
		if err := json.Unmarshal(op.Payload, &req); err != nil {
			return false, fmt.Errorf("decode preferences payload: %w", err)
		}
		if err := m.server.UpdatePreferences(ctx, req); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("unknown operation kind %q", op.Kind)
	}

	m.invalidateSubscriptionsCache(ctx)
	return true, nil
}

// OnStatusChange implements SubscriptionManager.
func (m *subscriptionManager) OnStatusChange(listener func(models.SubscriptionStatus)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cancel = m.feed.Subscribe(listener)
	// The replay is computed live so a late subscriber sees reality, not
	// a value cached at construction time.
	listener(m.statusLocked(context.Background()))
	return cancel
}

// syncOrQueue runs the server call now when the network looks usable, and
// queues the operation for a later drain when it is offline or the call
// fails transiently. Non-transient failures propagate to the caller.
func (m *subscriptionManager) syncOrQueue(ctx context.Context, kind models.OperationKind, payload any, call func(context.Context) error) error {
	if m.network.Current() == models.NetworkOffline {
		m.logger.Debug().Str("func", "subscriptionManager.syncOrQueue").Str("kind", string(kind)).Msg("offline, queueing operation")
		return m.enqueue(ctx, kind, payload)
	}

	err := call(ctx)
	if err == nil {
		m.invalidateSubscriptionsCache(ctx)
		return nil
	}
	if adapter.IsTransient(err) {
		m.logger.Debug().Err(err).
			Str("func", "subscriptionManager.syncOrQueue").
			Str("kind", string(kind)).
			Msg("server call failed transiently, queueing operation")
		return m.enqueue(ctx, kind, payload)
	}
	return err
}

func (m *subscriptionManager) enqueue(ctx context.Context, kind models.OperationKind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}

	op, err := m.pending.Append(ctx, models.PendingOperation{Kind: kind, Payload: raw})
	if err != nil {
		return fmt.Errorf("queue %s operation: %w", kind, err)
	}

	metrics.QueueDepth.Inc()
	m.logger.Info().
		Str("func", "subscriptionManager.enqueue").
		Int64("id", op.ID).
		Str("kind", string(kind)).
		Msg("operation queued for replay")
	return nil
}

func (m *subscriptionManager) invalidateSubscriptionsCache(ctx context.Context) {
	if err := m.cache.Delete(ctx, subscriptionsCacheKey); err != nil && !errors.Is(err, store.ErrUnavailable) {
		m.logger.Err(err).Str("func", "subscriptionManager.invalidateSubscriptionsCache").Msg("cache invalidation failed")
	}
}

// publishLocked pushes status to every listener. The transition table is
// advisory here: a violation is logged, never blocked, because the platform
// can move the state behind the app's back and the feed must still report
// what is real.
func (m *subscriptionManager) publishLocked(status models.SubscriptionStatus) {
	if m.lastState != "" && !models.CanTransition(m.lastState, status.State) {
		m.logger.Warn().
			Str("func", "subscriptionManager.publishLocked").
			Str("from", string(m.lastState)).
			Str("to", string(status.State)).
			Msg("unexpected subscription state transition")
	}
	m.lastState = status.State
	m.feed.Publish(status)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tabwave/pushsync/internal/adapter"
	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/mock"
	"github.com/tabwave/pushsync/internal/store"
	"github.com/tabwave/pushsync/models"
)

type managerMocks struct {
	registrar *mock.MockRegistrar
	gate      *mock.MockPermissionGate
	server    *mock.MockServerAdapter
	pending   *mock.MockPendingOperationRepository
	subs      *mock.MockSubscriptionRepository
	cache     *mock.MockCacheRepository
	meta      *mock.MockMetaRepository
	network   *stubNetwork
}

func newTestManager(t *testing.T, ctrl *gomock.Controller, state models.NetworkState) (*subscriptionManager, *managerMocks) {
	t.Helper()

	m := &managerMocks{
		registrar: mock.NewMockRegistrar(ctrl),
		gate:      mock.NewMockPermissionGate(ctrl),
		server:    mock.NewMockServerAdapter(ctrl),
		pending:   mock.NewMockPendingOperationRepository(ctrl),
		subs:      mock.NewMockSubscriptionRepository(ctrl),
		cache:     mock.NewMockCacheRepository(ctrl),
		meta:      mock.NewMockMetaRepository(ctrl),
		network:   newStubNetwork(state),
	}

	storages := &store.Storages{
		PendingOperations: m.pending,
		Subscriptions:     m.subs,
		Cache:             m.cache,
		Meta:              m.meta,
	}
	manager := NewSubscriptionManager(
		m.registrar, m.gate, m.server, storages, m.network,
		config.App{Platform: "desktop"}, logger.Nop(),
	).(*subscriptionManager)
	return manager, m
}

func testPushSubscription() models.PushSubscription {
	return models.PushSubscription{
		Endpoint: "https://push.example.com/send/abc123",
		Keys: models.SubscriptionKeys{
			P256DH: "BPubKeyMaterial",
			Auth:   "authSecret16",
		},
	}
}

// expectDeviceID satisfies every device-id lookup with a stored value.
func expectDeviceID(m *managerMocks, id string) {
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyDeviceID).Return(id, true, nil).AnyTimes()
}

// ── device id ────────────────────────────────────────────────────────────────

func TestSubscriptionManager_DeviceID_MintsOnceAndPersists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	var persisted string
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyDeviceID).Return("", false, nil)
	m.meta.EXPECT().Set(gomock.Any(), store.MetaKeyDeviceID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value string) error {
			persisted = value
			return nil
		})

	first := manager.DeviceID(context.Background())
	second := manager.DeviceID(context.Background())

	require.NotEmpty(t, first)
	require.NotEqual(t, models.FallbackDeviceID, first)
	assert.Equal(t, first, second, "the minted id must be stable across calls")
	assert.Equal(t, first, persisted)
}

func TestSubscriptionManager_DeviceID_ReadsStoredValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyDeviceID).Return("dev-stored", true, nil)

	assert.Equal(t, "dev-stored", manager.DeviceID(context.Background()))
	assert.Equal(t, "dev-stored", manager.DeviceID(context.Background()))
}

func TestSubscriptionManager_DeviceID_FallbackIsNeverCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	// Two failing reads, then the store recovers.
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyDeviceID).Return("", false, store.ErrUnavailable).Times(2)
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyDeviceID).Return("", false, nil)
	m.meta.EXPECT().Set(gomock.Any(), store.MetaKeyDeviceID, gomock.Any()).Return(nil)

	assert.Equal(t, models.FallbackDeviceID, manager.DeviceID(context.Background()))
	assert.Equal(t, models.FallbackDeviceID, manager.DeviceID(context.Background()))

	recovered := manager.DeviceID(context.Background())
	assert.NotEqual(t, models.FallbackDeviceID, recovered, "a recovered store must yield a real id")
}

func TestSubscriptionManager_DeviceID_PersistFailureFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyDeviceID).Return("", false, nil)
	m.meta.EXPECT().Set(gomock.Any(), store.MetaKeyDeviceID, gomock.Any()).Return(store.ErrUnavailable)

	assert.Equal(t, models.FallbackDeviceID, manager.DeviceID(context.Background()))
}

// ── vapid key ────────────────────────────────────────────────────────────────

func TestSubscriptionManager_VapidPublicKey_FetchesOnceThenRemembers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyVapidPublicKey).Return("", false, nil)
	m.server.EXPECT().GetVapidKey(gomock.Any()).Return("BServerKey", nil)
	m.meta.EXPECT().Set(gomock.Any(), store.MetaKeyVapidPublicKey, "BServerKey").Return(nil)

	key, ok := manager.VapidPublicKey(context.Background())
	require.True(t, ok)
	assert.Equal(t, "BServerKey", key)

	// Second call is answered from memory.
	key, ok = manager.VapidPublicKey(context.Background())
	require.True(t, ok)
	assert.Equal(t, "BServerKey", key)
}

func TestSubscriptionManager_VapidPublicKey_StoredValueSkipsServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyVapidPublicKey).Return("BStoredKey", true, nil)

	key, ok := manager.VapidPublicKey(context.Background())
	require.True(t, ok)
	assert.Equal(t, "BStoredKey", key)
}

func TestSubscriptionManager_VapidPublicKey_AbsenceIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyVapidPublicKey).Return("", false, store.ErrUnavailable)
	m.server.EXPECT().GetVapidKey(gomock.Any()).Return("", adapter.ErrUnreachable)

	key, ok := manager.VapidPublicKey(context.Background())
	assert.False(t, ok)
	assert.Empty(t, key)
}

// ── status ───────────────────────────────────────────────────────────────────

func TestSubscriptionManager_Status_NotSupported(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(false)

	status := manager.Status(context.Background())
	assert.Equal(t, models.StateNotSupported, status.State)
	assert.False(t, status.Subscribed())
}

func TestSubscriptionManager_Status_PermissionStates(t *testing.T) {
	tests := []struct {
		name       string
		permission models.Permission
		want       models.SubscriptionState
	}{
		{name: "undecided", permission: models.PermissionDefault, want: models.StatePermissionDefault},
		{name: "denied", permission: models.PermissionDenied, want: models.StatePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			manager, m := newTestManager(t, ctrl, models.NetworkOnline)

			m.registrar.EXPECT().Supported().Return(true)
			m.gate.EXPECT().Current(gomock.Any()).Return(tt.permission)

			status := manager.Status(context.Background())
			assert.Equal(t, tt.want, status.State)
		})
	}
}

func TestSubscriptionManager_Status_Subscribed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	sub := testPushSubscription()

	m.registrar.EXPECT().Supported().Return(true)
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted)
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil)

	status := manager.Status(context.Background())
	assert.Equal(t, models.StateSubscribed, status.State)
	assert.Equal(t, sub.Endpoint, status.Endpoint)
	assert.Equal(t, "dev-1", status.DeviceID)
	assert.True(t, status.Subscribed())
}

func TestSubscriptionManager_Status_StaleRecordDoesNotResurrect(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true)
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted)
	expectDeviceID(m, "dev-1")
	// The platform answers authoritatively: no registration. A leftover
	// stored record must not flip the state back to subscribed.
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, nil)
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").
		Return(models.DeviceSubscription{DeviceID: "dev-1", Endpoint: "https://push.example.com/old"}, nil)

	status := manager.Status(context.Background())
	assert.Equal(t, models.StateUnsubscribed, status.State)
}

func TestSubscriptionManager_Status_PlatformFailureAnswersFromRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true)
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted)
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, errors.New("ipc broke"))
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").
		Return(models.DeviceSubscription{DeviceID: "dev-1", Endpoint: "https://push.example.com/stored"}, nil)

	status := manager.Status(context.Background())
	assert.Equal(t, models.StateSubscribed, status.State)
	assert.Equal(t, "https://push.example.com/stored", status.Endpoint)
}

func TestSubscriptionManager_Status_PlatformFailureWithoutRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true)
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted)
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, errors.New("ipc broke"))
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrNotFound)

	status := manager.Status(context.Background())
	assert.Equal(t, models.StateUnsubscribed, status.State)
}

// ── permission ───────────────────────────────────────────────────────────────

func TestSubscriptionManager_RequestPermission_AlreadyDecided(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	// A decided permission is returned as-is; no prompt is shown.
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted)

	permission, err := manager.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PermissionGranted, permission)
}

func TestSubscriptionManager_RequestPermission_PromptsWhenUndecided(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	sub := testPushSubscription()

	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionDefault)
	m.gate.EXPECT().Request(gomock.Any()).Return(models.PermissionGranted, nil)

	// The post-prompt status publication recomputes the live state.
	m.registrar.EXPECT().Supported().Return(true)
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted)
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil)

	permission, err := manager.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PermissionGranted, permission)
}

func TestSubscriptionManager_RequestPermission_PromptFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionDefault)
	m.gate.EXPECT().Request(gomock.Any()).Return(models.PermissionDefault, errors.New("dbus timeout"))

	permission, err := manager.RequestPermission(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request notification permission")
	assert.Equal(t, models.PermissionDefault, permission)
}

// ── subscribe ────────────────────────────────────────────────────────────────

func TestSubscriptionManager_Subscribe_NotSupported(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(false)

	status, err := manager.Subscribe(context.Background(), models.DefaultPreferences())
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.Equal(t, models.StateNotSupported, status.State)
}

func TestSubscriptionManager_Subscribe_PermissionDenied(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true)
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionDenied)

	status, err := manager.Subscribe(context.Background(), models.DefaultPreferences())
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, models.StatePermissionDenied, status.State)
}

func TestSubscriptionManager_Subscribe_PromptDeniedMidFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true)
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionDefault)
	m.gate.EXPECT().Request(gomock.Any()).Return(models.PermissionDenied, nil)

	status, err := manager.Subscribe(context.Background(), models.DefaultPreferences())
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, models.StatePermissionDenied, status.State)
}

func TestSubscriptionManager_Subscribe_VapidUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyVapidPublicKey).Return("", false, nil)
	m.server.EXPECT().GetVapidKey(gomock.Any()).Return("", adapter.ErrUnreachable)

	// The error-path status answer is computed live.
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, nil).AnyTimes()
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrNotFound).AnyTimes()

	status, err := manager.Subscribe(context.Background(), models.DefaultPreferences())
	assert.ErrorIs(t, err, ErrVapidUnavailable)
	assert.Equal(t, models.StateUnsubscribed, status.State)
}

func TestSubscriptionManager_Subscribe_ReusesExistingRegistration(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	sub := testPushSubscription()
	prefs := models.Preferences{PermissionRequests: true}

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyVapidPublicKey).Return("BKey", true, nil)
	expectDeviceID(m, "dev-1")
	// No registrar.Subscribe expectation: the live registration is reused.
	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil).AnyTimes()

	m.subs.EXPECT().UpsertByDeviceID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record models.DeviceSubscription) error {
			assert.Equal(t, "dev-1", record.DeviceID)
			assert.Equal(t, sub.Endpoint, record.Endpoint)
			assert.Equal(t, sub.Keys.P256DH, record.P256DH)
			assert.Equal(t, sub.Keys.Auth, record.Auth)
			return nil
		})
	m.server.EXPECT().Subscribe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.SubscribeRequest) (models.SubscribeResponse, error) {
			assert.Equal(t, sub, req.Subscription)
			assert.Equal(t, "dev-1", req.DeviceID)
			assert.Equal(t, "desktop", req.Platform)

			decoded, err := DecodePreferences(req.EncryptedPreferences)
			require.NoError(t, err)
			assert.Equal(t, prefs, decoded)
			return models.SubscribeResponse{Success: true, SubscriptionID: "srv-1"}, nil
		})
	m.cache.EXPECT().Delete(gomock.Any(), subscriptionsCacheKey).Return(nil)

	status, err := manager.Subscribe(context.Background(), prefs)
	require.NoError(t, err)
	assert.Equal(t, models.StateSubscribed, status.State)
	assert.Equal(t, sub.Endpoint, status.Endpoint)
}

func TestSubscriptionManager_Subscribe_CreatesRegistrationWhenMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	sub := testPushSubscription()

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyVapidPublicKey).Return("BKey", true, nil)
	expectDeviceID(m, "dev-1")

	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, nil)
	m.registrar.EXPECT().Subscribe(gomock.Any(), "BKey").Return(sub, nil)
	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil)

	m.subs.EXPECT().UpsertByDeviceID(gomock.Any(), gomock.Any()).Return(nil)
	m.server.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Return(models.SubscribeResponse{Success: true}, nil)
	m.cache.EXPECT().Delete(gomock.Any(), subscriptionsCacheKey).Return(nil)

	status, err := manager.Subscribe(context.Background(), models.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, models.StateSubscribed, status.State)
}

func TestSubscriptionManager_Subscribe_OfflineQueuesExactlyOneOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOffline)
	sub := testPushSubscription()

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyVapidPublicKey).Return("BKey", true, nil)
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil).AnyTimes()
	m.subs.EXPECT().UpsertByDeviceID(gomock.Any(), gomock.Any()).Return(nil)

	// No server.Subscribe expectation: offline means queue, not call.
	m.pending.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.PendingOperation) (models.PendingOperation, error) {
			assert.Equal(t, models.OperationSubscribe, op.Kind)

			var req models.SubscribeRequest
			require.NoError(t, json.Unmarshal(op.Payload, &req))
			assert.Equal(t, "dev-1", req.DeviceID)
			assert.Equal(t, sub.Endpoint, req.Subscription.Endpoint)

			op.ID = 1
			return op, nil
		})

	status, err := manager.Subscribe(context.Background(), models.DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, models.StateSubscribed, status.State, "local state reflects the platform even before the server call")
}

func TestSubscriptionManager_Subscribe_TransientServerFailureQueues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	sub := testPushSubscription()

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyVapidPublicKey).Return("BKey", true, nil)
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil).AnyTimes()
	m.subs.EXPECT().UpsertByDeviceID(gomock.Any(), gomock.Any()).Return(nil)

	m.server.EXPECT().Subscribe(gomock.Any(), gomock.Any()).
		Return(models.SubscribeResponse{}, adapter.ErrUnreachable)
	m.pending.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.PendingOperation) (models.PendingOperation, error) {
			op.ID = 1
			return op, nil
		})

	_, err := manager.Subscribe(context.Background(), models.DefaultPreferences())
	assert.NoError(t, err, "a transiently failed registration is queued, not surfaced")
}

func TestSubscriptionManager_Subscribe_NonTransientFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	sub := testPushSubscription()

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	m.meta.EXPECT().Get(gomock.Any(), store.MetaKeyVapidPublicKey).Return("BKey", true, nil)
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil).AnyTimes()
	m.subs.EXPECT().UpsertByDeviceID(gomock.Any(), gomock.Any()).Return(nil)

	// A 4xx never goes to the queue: replaying it unchanged cannot succeed.
	m.server.EXPECT().Subscribe(gomock.Any(), gomock.Any()).
		Return(models.SubscribeResponse{}, adapter.ErrBadRequest)

	_, err := manager.Subscribe(context.Background(), models.DefaultPreferences())
	assert.ErrorIs(t, err, adapter.ErrBadRequest)
}

// ── unsubscribe ──────────────────────────────────────────────────────────────

func TestSubscriptionManager_Unsubscribe_NotSupportedIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(false)

	assert.NoError(t, manager.Unsubscribe(context.Background()))
}

func TestSubscriptionManager_Unsubscribe_PlatformBeforeServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	sub := testPushSubscription()

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	expectDeviceID(m, "dev-1")

	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil)
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, nil).AnyTimes()
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrNotFound).AnyTimes()

	// The platform registration must be gone before the server is told.
	gomock.InOrder(
		m.registrar.EXPECT().Unsubscribe(gomock.Any()).Return(nil),
		m.server.EXPECT().Unsubscribe(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.UnsubscribeRequest) error {
				assert.Equal(t, "dev-1", req.DeviceID)
				assert.Equal(t, sub.Endpoint, req.Endpoint)
				return nil
			}),
	)
	m.subs.EXPECT().DeleteByDeviceID(gomock.Any(), "dev-1").Return(nil)
	m.cache.EXPECT().Delete(gomock.Any(), subscriptionsCacheKey).Return(nil)

	require.NoError(t, manager.Unsubscribe(context.Background()))
}

func TestSubscriptionManager_Unsubscribe_PlatformRemovalFailureStopsFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	sub := testPushSubscription()

	m.registrar.EXPECT().Supported().Return(true)
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil)
	m.registrar.EXPECT().Unsubscribe(gomock.Any()).Return(errors.New("ipc broke"))

	// Neither the record nor the server are touched when the platform
	// removal fails; the registration still exists.
	err := manager.Unsubscribe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remove platform subscription")
}

func TestSubscriptionManager_Unsubscribe_NothingRegisteredCleansRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, nil).AnyTimes()
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrNotFound).AnyTimes()

	m.subs.EXPECT().DeleteByDeviceID(gomock.Any(), "dev-1").Return(nil)

	assert.NoError(t, manager.Unsubscribe(context.Background()))
}

func TestSubscriptionManager_Unsubscribe_OfflineQueues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOffline)
	sub := testPushSubscription()

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(sub, true, nil)
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, nil).AnyTimes()
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrNotFound).AnyTimes()

	m.registrar.EXPECT().Unsubscribe(gomock.Any()).Return(nil)
	m.subs.EXPECT().DeleteByDeviceID(gomock.Any(), "dev-1").Return(nil)
	m.pending.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.PendingOperation) (models.PendingOperation, error) {
			assert.Equal(t, models.OperationUnsubscribe, op.Kind)

			var req models.UnsubscribeRequest
			require.NoError(t, json.Unmarshal(op.Payload, &req))
			assert.Equal(t, "dev-1", req.DeviceID)
			assert.Equal(t, sub.Endpoint, req.Endpoint)

			op.ID = 1
			return op, nil
		})

	assert.NoError(t, manager.Unsubscribe(context.Background()))
}

// ── preferences ──────────────────────────────────────────────────────────────

func TestSubscriptionManager_UpdatePreferences_RequiresSubscription(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	expectDeviceID(m, "dev-1")
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrNotFound)

	err := manager.UpdatePreferences(context.Background(), models.DefaultPreferences())
	assert.ErrorIs(t, err, ErrNotSubscribed)
}

func TestSubscriptionManager_UpdatePreferences_SendsEncodedSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	prefs := models.Preferences{SessionCompletion: true, AgentErrors: true}

	expectDeviceID(m, "dev-1")
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").
		Return(models.DeviceSubscription{DeviceID: "dev-1"}, nil)
	m.server.EXPECT().UpdatePreferences(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.PreferencesRequest) error {
			assert.Equal(t, "dev-1", req.DeviceID)

			decoded, err := DecodePreferences(req.EncryptedPreferences)
			require.NoError(t, err)
			assert.Equal(t, prefs, decoded)
			return nil
		})
	m.cache.EXPECT().Delete(gomock.Any(), subscriptionsCacheKey).Return(nil)

	assert.NoError(t, manager.UpdatePreferences(context.Background(), prefs))
}

func TestSubscriptionManager_UpdatePreferences_StoreOutageDefersToServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	expectDeviceID(m, "dev-1")
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrUnavailable)
	m.server.EXPECT().UpdatePreferences(gomock.Any(), gomock.Any()).Return(nil)
	m.cache.EXPECT().Delete(gomock.Any(), subscriptionsCacheKey).Return(nil)

	assert.NoError(t, manager.UpdatePreferences(context.Background(), models.DefaultPreferences()))
}

func TestSubscriptionManager_UpdatePreferences_TransientFailureQueues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	expectDeviceID(m, "dev-1")
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").
		Return(models.DeviceSubscription{DeviceID: "dev-1"}, nil)
	m.server.EXPECT().UpdatePreferences(gomock.Any(), gomock.Any()).Return(adapter.ErrServerError)
	m.pending.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op models.PendingOperation) (models.PendingOperation, error) {
			assert.Equal(t, models.OperationUpdatePreferences, op.Kind)
			op.ID = 1
			return op, nil
		})

	assert.NoError(t, manager.UpdatePreferences(context.Background(), models.DefaultPreferences()))
}

// ── subscription list ────────────────────────────────────────────────────────

func TestSubscriptionManager_Subscriptions_CacheHitSkipsServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	cached := []models.ServerSubscription{{ID: "srv-1", DeviceID: "dev-1", Platform: "desktop"}}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	m.cache.EXPECT().GetIfNotExpired(gomock.Any(), subscriptionsCacheKey).Return(raw, true, nil)

	subs, err := manager.Subscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, subs)
}

func TestSubscriptionManager_Subscriptions_CacheMissFetchesAndStores(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	fetched := []models.ServerSubscription{{ID: "srv-2", DeviceID: "dev-2", Platform: "web"}}

	m.cache.EXPECT().GetIfNotExpired(gomock.Any(), subscriptionsCacheKey).Return(nil, false, nil)
	m.server.EXPECT().ListSubscriptions(gomock.Any()).Return(fetched, nil)
	m.cache.EXPECT().Upsert(gomock.Any(), subscriptionsCacheKey, gomock.Any(), subscriptionsCacheTTL).Return(nil)

	subs, err := manager.Subscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fetched, subs)
}

func TestSubscriptionManager_Subscriptions_CorruptCacheFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	fetched := []models.ServerSubscription{{ID: "srv-3"}}

	m.cache.EXPECT().GetIfNotExpired(gomock.Any(), subscriptionsCacheKey).Return([]byte("{not json"), true, nil)
	m.server.EXPECT().ListSubscriptions(gomock.Any()).Return(fetched, nil)
	m.cache.EXPECT().Upsert(gomock.Any(), subscriptionsCacheKey, gomock.Any(), subscriptionsCacheTTL).Return(nil)

	subs, err := manager.Subscriptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fetched, subs)
}

func TestSubscriptionManager_Subscriptions_ServerFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.cache.EXPECT().GetIfNotExpired(gomock.Any(), subscriptionsCacheKey).Return(nil, false, store.ErrUnavailable)
	m.server.EXPECT().ListSubscriptions(gomock.Any()).Return(nil, adapter.ErrUnreachable)

	_, err := manager.Subscriptions(context.Background())
	assert.ErrorIs(t, err, adapter.ErrUnreachable)
}

// ── resync ───────────────────────────────────────────────────────────────────

func TestSubscriptionManager_Resync_RegistrationGone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, nil).AnyTimes()
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrNotFound).AnyTimes()

	m.subs.EXPECT().DeleteByDeviceID(gomock.Any(), "dev-1").Return(nil)
	m.server.EXPECT().Unsubscribe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.UnsubscribeRequest) error {
			assert.Equal(t, "dev-1", req.DeviceID)
			assert.Empty(t, req.Endpoint, "the endpoint is unknown once the registration is gone")
			return nil
		})
	m.cache.EXPECT().Delete(gomock.Any(), subscriptionsCacheKey).Return(nil)

	assert.NoError(t, manager.ResyncSubscription(context.Background()))
}

func TestSubscriptionManager_Resync_RotatedRegistrationKeepsServerPreferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)
	rotated := models.PushSubscription{
		Endpoint: "https://push.example.com/send/rotated",
		Keys:     models.SubscriptionKeys{P256DH: "BNewKey", Auth: "newSecret"},
	}

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(rotated, true, nil).AnyTimes()

	m.subs.EXPECT().UpsertByDeviceID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, record models.DeviceSubscription) error {
			assert.Equal(t, rotated.Endpoint, record.Endpoint)
			return nil
		})
	m.server.EXPECT().Subscribe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.SubscribeRequest) (models.SubscribeResponse, error) {
			assert.Equal(t, rotated, req.Subscription)
			assert.Empty(t, req.EncryptedPreferences, "resync must not overwrite the server-side preference set")
			return models.SubscribeResponse{Success: true}, nil
		})
	m.cache.EXPECT().Delete(gomock.Any(), subscriptionsCacheKey).Return(nil)

	assert.NoError(t, manager.ResyncSubscription(context.Background()))
}

// ── queued operation replay ──────────────────────────────────────────────────

func TestSubscriptionManager_HandleOperation_ReplaysByKind(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.OperationKind
		payload any
		expect  func(t *testing.T, m *managerMocks)
	}{
		{
			name:    "subscribe",
			kind:    models.OperationSubscribe,
			payload: models.SubscribeRequest{DeviceID: "dev-1", Platform: "desktop"},
			expect: func(t *testing.T, m *managerMocks) {
				m.server.EXPECT().Subscribe(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req models.SubscribeRequest) (models.SubscribeResponse, error) {
						assert.Equal(t, "dev-1", req.DeviceID)
						return models.SubscribeResponse{Success: true}, nil
					})
			},
		},
		{
			name:    "unsubscribe",
			kind:    models.OperationUnsubscribe,
			payload: models.UnsubscribeRequest{DeviceID: "dev-1"},
			expect: func(_ *testing.T, m *managerMocks) {
				m.server.EXPECT().Unsubscribe(gomock.Any(), models.UnsubscribeRequest{DeviceID: "dev-1"}).Return(nil)
			},
		},
		{
			name:    "update preferences",
			kind:    models.OperationUpdatePreferences,
			payload: models.PreferencesRequest{DeviceID: "dev-1", EncryptedPreferences: "e30="},
			expect: func(_ *testing.T, m *managerMocks) {
				m.server.EXPECT().UpdatePreferences(gomock.Any(), models.PreferencesRequest{DeviceID: "dev-1", EncryptedPreferences: "e30="}).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			manager, m := newTestManager(t, ctrl, models.NetworkOnline)
			tt.expect(t, m)
			m.cache.EXPECT().Delete(gomock.Any(), subscriptionsCacheKey).Return(nil)

			raw, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			ok, err := manager.HandleOperation(context.Background(), models.PendingOperation{Kind: tt.kind, Payload: raw})
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestSubscriptionManager_HandleOperation_ServerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.server.EXPECT().Unsubscribe(gomock.Any(), gomock.Any()).Return(adapter.ErrUnreachable)

	ok, err := manager.HandleOperation(context.Background(), models.PendingOperation{
		Kind:    models.OperationUnsubscribe,
		Payload: []byte(`{"deviceId":"dev-1"}`),
	})
	assert.False(t, ok)
	assert.ErrorIs(t, err, adapter.ErrUnreachable)
}

func TestSubscriptionManager_HandleOperation_CorruptPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, _ := newTestManager(t, ctrl, models.NetworkOnline)

	ok, err := manager.HandleOperation(context.Background(), models.PendingOperation{
		Kind:    models.OperationSubscribe,
		Payload: []byte("{broken"),
	})
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode subscribe payload")
}

func TestSubscriptionManager_HandleOperation_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, _ := newTestManager(t, ctrl, models.NetworkOnline)

	ok, err := manager.HandleOperation(context.Background(), models.PendingOperation{
		Kind:    models.OperationKind("frobnicate"),
		Payload: []byte(`{}`),
	})
	assert.False(t, ok)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation kind")
}

// ── status feed ──────────────────────────────────────────────────────────────

func TestSubscriptionManager_OnStatusChange_ReplaysCurrentStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(false)

	var seen []models.SubscriptionStatus
	cancel := manager.OnStatusChange(func(status models.SubscriptionStatus) {
		seen = append(seen, status)
	})
	defer cancel()

	require.Len(t, seen, 1, "a new listener hears the current status immediately")
	assert.Equal(t, models.StateNotSupported, seen[0].State)
}

func TestSubscriptionManager_OnStatusChange_PublishesPerOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, nil).AnyTimes()
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrNotFound).AnyTimes()
	m.subs.EXPECT().DeleteByDeviceID(gomock.Any(), "dev-1").Return(nil).Times(2)

	var seen []models.SubscriptionState
	cancel := manager.OnStatusChange(func(status models.SubscriptionStatus) {
		seen = append(seen, status.State)
	})
	defer cancel()

	// Two no-op unsubscribes still publish once each: every lifecycle
	// operation reports, even when the state did not move.
	require.NoError(t, manager.Unsubscribe(context.Background()))
	require.NoError(t, manager.Unsubscribe(context.Background()))

	assert.Equal(t, []models.SubscriptionState{
		models.StateUnsubscribed,
		models.StateUnsubscribed,
		models.StateUnsubscribed,
	}, seen)
}

func TestSubscriptionManager_OnStatusChange_CancelDetaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	manager, m := newTestManager(t, ctrl, models.NetworkOnline)

	m.registrar.EXPECT().Supported().Return(true).AnyTimes()
	m.gate.EXPECT().Current(gomock.Any()).Return(models.PermissionGranted).AnyTimes()
	expectDeviceID(m, "dev-1")
	m.registrar.EXPECT().Get(gomock.Any()).Return(models.PushSubscription{}, false, nil).AnyTimes()
	m.subs.EXPECT().GetByDeviceID(gomock.Any(), "dev-1").Return(models.DeviceSubscription{}, store.ErrNotFound).AnyTimes()
	m.subs.EXPECT().DeleteByDeviceID(gomock.Any(), "dev-1").Return(nil)

	var calls int
	cancel := manager.OnStatusChange(func(models.SubscriptionStatus) {
		calls++
	})
	require.Equal(t, 1, calls)

	cancel()
	require.NoError(t, manager.Unsubscribe(context.Background()))
	assert.Equal(t, 1, calls, "a cancelled listener hears nothing further")
}

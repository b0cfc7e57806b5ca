// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package bridge maintains the websocket link to the notification worker
// peer, the process that actually displays notifications and owns the OS
// badge. Commands (close-notification, set-badge, clear-cache) flow out;
// events (notification-click, push-subscription-changed, network) flow in.
//
// The Bridge implements platform.Notifier, so the reconciler talks to the
// worker peer without knowing about websockets. When no peer is configured
// the composition root substitutes the no-op notifier instead.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"

	"github.com/tabwave/pushsync/internal/config"
	"github.com/tabwave/pushsync/internal/events"
	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/internal/metrics"
	"github.com/tabwave/pushsync/models"
)

const (
	reconnectBase = 500 * time.Millisecond
	reconnectCap  = 30 * time.Second
	writeTimeout  = 5 * time.Second
)

// ResyncFunc is the subscription manager hook fired when the worker peer
// reports a rotated push registration.
type ResyncFunc func(ctx context.Context)

// Bridge is a websocket client for the worker peer. It keeps exactly one
// connection alive, redialing with capped exponential backoff whenever the
// peer goes away, until Stop or context cancellation.
type Bridge struct {
	url string

	clicks *events.Feed[string]
	logger *logger.Logger

	mu     sync.Mutex
	resync ResyncFunc
	hint   func()
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// connMu serializes writers; the run loop is the only reader.
	connMu sync.Mutex
	conn   *websocket.Conn
}

// NewBridge constructs a Bridge dialing cfg.URL. The caller ensures the URL
// is non-empty; with no peer configured, use platform.NewNoopNotifier.
func NewBridge(cfg config.Bridge, logger *logger.Logger) *Bridge {
	return &Bridge{
		url:    cfg.URL,
		clicks: events.NewFeed[string](),
		logger: logger,
	}
}

// SetResyncFunc registers the registration-refresh hook. Must be called
// before Start.
func (b *Bridge) SetResyncFunc(fn ResyncFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resync = fn
}

// SetNetworkHintFunc registers the hook fired on a connectivity hint from
// the worker peer, typically the network monitor's Kick. Must be called
// before Start.
func (b *Bridge) SetNetworkHintFunc(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hint = fn
}

// OnNotificationClick registers listener for notification-click events and
// returns its cancel function. The listener receives the notification id.
func (b *Bridge) OnNotificationClick(listener func(notificationID string)) (cancel func()) {
	return b.clicks.Subscribe(listener)
}

// Start launches the connect-and-read loop. Idempotent: calling Start on a
// running bridge does nothing.
func (b *Bridge) Start(ctx context.Context) {
	b.mu.Lock()
	if b.cancel != nil {
		b.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.wg.Add(1)
	b.mu.Unlock()

	go b.run(loopCtx)
}

// Stop cancels the loop, closes the live connection to unblock the reader
// and waits for the loop to exit. Safe to call on a bridge that was never
// started.
func (b *Bridge) Stop() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	b.connMu.Lock()
	if b.conn != nil {
		_ = b.conn.Close()
	}
	b.connMu.Unlock()

	b.wg.Wait()
}

// CloseNotification sends a close-notification command for the given tag.
func (b *Bridge) CloseNotification(ctx context.Context, tag string) error {
	return b.send(ctx, models.BridgeMessage{
		Type:           models.BridgeCmdCloseNotification,
		NotificationID: tag,
	})
}

// SetBadge sends a set-badge command with the given count.
func (b *Bridge) SetBadge(ctx context.Context, count int) error {
	return b.send(ctx, models.BridgeMessage{
		Type:  models.BridgeCmdSetBadge,
		Badge: &count,
	})
}

// ClearCache tells the worker peer to drop its cached notification assets.
// Sent when the device unsubscribes.
func (b *Bridge) ClearCache(ctx context.Context) error {
	return b.send(ctx, models.BridgeMessage{Type: models.BridgeCmdClearCache})
}

func (b *Bridge) run(ctx context.Context) {
	defer b.wg.Done()

	for {
		conn, err := b.connect(ctx)
		if err != nil {
			return
		}
		// Stop may have raced the dial; it only closes the connection it can
		// see, so re-check before committing to the read loop.
		if ctx.Err() != nil {
			b.dropConn(conn)
			return
		}

		metrics.BridgeConnects.Inc()
		b.logger.Info().
			Str("func", "Bridge.run").
			Str("url", b.url).
			Msg("connected to worker peer")

		b.pump(ctx, conn)
		b.dropConn(conn)

		if ctx.Err() != nil {
			return
		}
		b.logger.Warn().
			Str("func", "Bridge.run").
			Msg("worker peer connection lost, reconnecting")
	}
}

// connect dials the peer until it succeeds or ctx ends. Every failed dial is
// retryable; the backoff grows from reconnectBase and is capped at
// reconnectCap.
func (b *Bridge) connect(ctx context.Context) (*websocket.Conn, error) {
	backoff := retry.WithCappedDuration(reconnectCap, retry.NewExponential(reconnectBase))

	var conn *websocket.Conn
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
		if err != nil {
			b.logger.Debug().
				Str("func", "Bridge.connect").
				Str("url", b.url).
				Err(err).
				Msg("worker peer dial failed")
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.connMu.Lock()
	b.conn = conn
	b.connMu.Unlock()
	return conn, nil
}

// pump reads messages until the connection fails. Read errors are not
// reported; the run loop redials.
func (b *Bridge) pump(ctx context.Context, conn *websocket.Conn) {
	for {
		var msg models.BridgeMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		b.dispatch(ctx, msg)
	}
}

func (b *Bridge) dispatch(ctx context.Context, msg models.BridgeMessage) {
	switch msg.Type {
	case models.BridgeEvtNotificationClick:
		if msg.NotificationID == "" {
			b.logger.Debug().
				Str("func", "Bridge.dispatch").
				Msg("notification-click without id, dropped")
			return
		}
		b.clicks.Publish(msg.NotificationID)

	case models.BridgeEvtSubscriptionChanged:
		b.mu.Lock()
		resync := b.resync
		b.mu.Unlock()
		if resync == nil {
			return
		}
		// Fire-and-forget: a registration refresh must not stall the reader.
		go resync(ctx)

	case models.BridgeEvtNetwork:
		online := false
		if msg.Online != nil {
			online = *msg.Online
		}
		b.logger.Debug().
			Str("func", "Bridge.dispatch").
			Bool("online", online).
			Msg("worker peer connectivity hint")

		b.mu.Lock()
		hint := b.hint
		b.mu.Unlock()
		if hint != nil {
			hint()
		}

	default:
		b.logger.Debug().
			Str("func", "Bridge.dispatch").
			Str("type", msg.Type).
			Msg("unknown worker peer message, dropped")
	}
}

// send writes one command under the writer lock. The write deadline is the
// earlier of writeTimeout and the context deadline.
func (b *Bridge) send(ctx context.Context, msg models.BridgeMessage) error {
	b.connMu.Lock()
	defer b.connMu.Unlock()

	if b.conn == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = b.conn.SetWriteDeadline(deadline)

	if err := b.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s to worker peer: %w", msg.Type, err)
	}
	return nil
}

// dropConn clears the shared connection reference and closes the socket.
// Guarded against a Stop that already swapped the reference.
func (b *Bridge) dropConn(conn *websocket.Conn) {
	b.connMu.Lock()
	if b.conn == conn {
		b.conn = nil
	}
	b.connMu.Unlock()
	_ = conn.Close()
}

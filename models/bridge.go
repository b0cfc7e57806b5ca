// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package models

// Message types exchanged with the notification worker peer over the local
// websocket bridge. Commands flow app -> worker, events flow worker -> app.

const (
	// Commands.
	BridgeCmdCloseNotification = "close-notification"
	BridgeCmdSetBadge          = "set-badge"
	BridgeCmdClearCache        = "clear-cache"

	// Events.
	BridgeEvtNotificationClick   = "notification-click"
	BridgeEvtSubscriptionChanged = "push-subscription-changed"
	BridgeEvtNetwork             = "network"
)

// BridgeMessage is the single envelope used in both directions.
// Only the fields relevant to Type are populated.
type BridgeMessage struct {
	Type string `json:"type"`

	// NotificationID tags close-notification commands and
	// notification-click events.
	NotificationID string `json:"notificationId,omitempty"`

	// Badge carries the count for set-badge commands.
	Badge *int `json:"badge,omitempty"`

	// Online carries the connectivity hint of network events.
	Online *bool `json:"online,omitempty"`
}

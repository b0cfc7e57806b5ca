// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package models

import "time"

// RequestOutcome is the terminal state of a permission request.
type RequestOutcome string

const (
	OutcomeApproved RequestOutcome = "approved"
	OutcomeDenied   RequestOutcome = "denied"
	OutcomeCanceled RequestOutcome = "canceled"
)

// PermissionRequest is one in-flight agent approval waiting on the user,
// as published by the session store. The request id doubles as the platform
// notification tag, which is what lets the reconciler close the matching
// notification when the request completes.
type PermissionRequest struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionState is the slice of one session's state the reconciler consumes:
// requests still pending, and terminal outcomes keyed by the same ids.
// Completed entries can appear without the id ever having been observed in
// Requests on this device; that is the cross-device completion case.
type SessionState struct {
	Requests  map[string]PermissionRequest `json:"requests"`
	Completed map[string]RequestOutcome    `json:"completedRequests"`
}

// SessionSnapshot is one immutable observation of every known session,
// keyed by session id. Snapshots are emitted in order by the session store;
// consumers must treat them as read-only.
type SessionSnapshot struct {
	Sessions map[string]SessionState `json:"sessions"`
}

// PendingTotal counts pending requests across all sessions. It is the badge
// value shown on the app icon.
func (s SessionSnapshot) PendingTotal() int {
	total := 0
	for _, sess := range s.Sessions {
		total += len(sess.Requests)
	}
	return total
}

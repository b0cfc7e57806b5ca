// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeWithTraceID runs one request through the traceid middleware and
// returns the recorder plus the request the inner handler observed.
func executeWithTraceID(h *Handler, inboundTraceID string) (*httptest.ResponseRecorder, *http.Request) {
	var capturedReq *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	if inboundTraceID != "" {
		req.Header.Set(traceIDHeader, inboundTraceID)
	}
	rec := httptest.NewRecorder()

	h.withTraceID(next).ServeHTTP(rec, req)

	return rec, capturedReq
}

func TestWithTraceID_TableTest(t *testing.T) {
	tests := []struct {
		name            string
		inboundTraceID  string
		wantSameTraceID bool
		wantValidUUID   bool
	}{
		{
			name:            "inbound trace id is reused",
			inboundTraceID:  "shell-trace-1",
			wantSameTraceID: true,
		},
		{
			name:           "missing trace id gets generated",
			inboundTraceID: "",
			wantValidUUID:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, "")

			rec, capturedReq := executeWithTraceID(h, tt.inboundTraceID)

			require.NotNil(t, capturedReq, "next handler was not called")
			assert.Equal(t, http.StatusOK, rec.Code)

			got := rec.Header().Get(traceIDHeader)
			require.NotEmpty(t, got)

			if tt.wantSameTraceID {
				assert.Equal(t, tt.inboundTraceID, got)
			}
			if tt.wantValidUUID {
				_, err := uuid.Parse(got)
				assert.NoError(t, err, "generated trace id is not a UUID: %s", got)
			}
		})
	}
}

// TestWithTraceID_FreshIDPerRequest verifies two requests without inbound
// ids get distinct generated ones.
func TestWithTraceID_FreshIDPerRequest(t *testing.T) {
	h, _ := newTestHandler(t, "")

	rec1, _ := executeWithTraceID(h, "")
	rec2, _ := executeWithTraceID(h, "")

	first := rec1.Header().Get(traceIDHeader)
	second := rec2.Header().Get(traceIDHeader)
	require.NotEmpty(t, first)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
}

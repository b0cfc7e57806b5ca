// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package httpapi

import (
	"net/http"
	"time"

	"github.com/tabwave/pushsync/internal/logger"
)

// withLogging emits one structured line per finished request with the
// method, path, status, duration and response size.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()
		uri := r.RequestURI
		method := r.Method

		lw := &responseWriter{
			ResponseWriter: w,
		}

		next.ServeHTTP(lw, r)

		log.Info().
			Str("uri", uri).
			Str("method", method).
			Int("status", lw.status).
			Dur("duration", time.Since(start)).
			Int("size", lw.size).
			Send()
	})
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package utils holds small helpers shared across transport layers.
package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON serializes data and writes it to the response with the given
// status code and an "application/json" content type.
//
// When marshaling fails it answers 500 Internal Server Error instead and
// returns a wrapped error. The returned int is the number of body bytes
// written.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

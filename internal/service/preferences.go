// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package service

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/tabwave/pushsync/models"
)

// The wire field is called encryptedPreferences for historical reasons, but
// the content is a reversible encoding, not encryption: base64 over the JSON
// form. The server stores the blob opaquely and any of the account's clients
// can decode it.

// EncodePreferences encodes prefs into the wire form.
func EncodePreferences(p models.Preferences) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal preferences: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodePreferences reverses EncodePreferences. An empty or undecodable
// blob is an error; callers wanting a default fall back to
// models.DefaultPreferences themselves.
func DecodePreferences(encoded string) (models.Preferences, error) {
	if encoded == "" {
		return models.Preferences{}, fmt.Errorf("empty preferences payload")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return models.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	var p models.Preferences
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.Preferences{}, fmt.Errorf("unmarshal preferences: %w", err)
	}
	return p, nil
}

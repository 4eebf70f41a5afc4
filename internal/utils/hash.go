// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Checksum computes the SHA-256 hex digest of the canonical JSON encoding of
// payload.
//
// encoding/json serializes map keys in sorted order, so two payloads with
// equal field/value contents always produce the same digest regardless of
// insertion order. This makes the checksum usable for cheap equality checks
// between local and remote entity states.
func Checksum(payload map[string]any) (string, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload for checksum: %w", err)
	}

	return ChecksumBytes(data), nil
}

// ChecksumBytes computes the SHA-256 hex digest of data.
func ChecksumBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

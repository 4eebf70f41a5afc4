// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// EntityGroup bundles every exported entity of one type inside an offline
// package.
type EntityGroup struct {
	EntityType string       `json:"entity_type"`
	Entities   []SyncEntity `json:"entities"`
}

// OfflinePackage is a point-in-time, checksummed export of selected entity
// types for a device about to go offline. Packages are immutable once built;
// re-requesting produces a new package.
type OfflinePackage struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`

	EntityTypes []string      `json:"entity_types"`
	Data        []EntityGroup `json:"data"`

	TotalEntities int   `json:"total_entities"`
	SizeBytes     int64 `json:"size_bytes"`

	// Checksum is the SHA-256 hex digest of the serialized Data payload.
	// Consumers must verify it before trusting package contents.
	Checksum string `json:"checksum"`

	// Version is a monotonic export counter. Later packages always carry a
	// higher version.
	Version int64 `json:"version"`

	// ExpiresAt bounds how long consumers may trust the snapshot; packages
	// past this instant must be rejected. Nil means the package never
	// expires.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

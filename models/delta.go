// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// RemoteDelta is one server-side entity state shipped to a device during a
// pull, or fetched ad hoc when a push conflicts.
type RemoteDelta struct {
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	Version    int64          `json:"version"`
	Deleted    bool           `json:"deleted"`
	ModifiedAt time.Time      `json:"modified_at"`
}

// PushAck is the server's acknowledgement of one delivered operation.
type PushAck struct {
	// AlreadyApplied reports that the server had previously accepted an
	// operation with the same ID; the redelivery had no effect.
	AlreadyApplied bool `json:"already_applied"`

	// NewVersion is the entity version the server holds after applying the
	// operation.
	NewVersion int64 `json:"new_version"`

	ModifiedAt time.Time `json:"modified_at"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// SyncDirection controls which way changes of an entity type flow.
type SyncDirection string

const (
	DirectionPush          SyncDirection = "push"
	DirectionPull          SyncDirection = "pull"
	DirectionBidirectional SyncDirection = "bidirectional"
)

// SyncConfig is the per-entity-type synchronization policy. Exactly one
// config is active per entity type at any time.
type SyncConfig struct {
	EntityType string `json:"entity_type"`

	// Enabled gates TrackChange: changes to a disabled type are rejected.
	Enabled bool `json:"enabled"`

	Direction        SyncDirection    `json:"direction"`
	ConflictStrategy ConflictStrategy `json:"conflict_strategy"`

	// BatchSize bounds the number of deltas requested per pull.
	BatchSize int `json:"batch_size"`

	// MaxRetries bounds transient-failure redelivery per operation.
	MaxRetries int `json:"max_retries"`

	// AllowOffline permits entities of this type to be exported into
	// offline packages.
	AllowOffline bool `json:"allow_offline"`

	UpdatedAt time.Time `json:"updated_at"`
}

// SyncConfigPatch carries partial updates for UpdateSyncConfig. Nil fields
// are left unchanged.
type SyncConfigPatch struct {
	Enabled          *bool             `json:"enabled,omitempty"`
	Direction        *SyncDirection    `json:"direction,omitempty"`
	ConflictStrategy *ConflictStrategy `json:"conflict_strategy,omitempty"`
	BatchSize        *int              `json:"batch_size,omitempty"`
	MaxRetries       *int              `json:"max_retries,omitempty"`
	AllowOffline     *bool             `json:"allow_offline,omitempty"`
}

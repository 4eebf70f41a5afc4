// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// SyncOutcome is the worst-case result of a device's most recent session.
type SyncOutcome string

const (
	// SyncOutcomeIdle means the last session finished with no hard failures
	// and no unresolved conflicts.
	SyncOutcomeIdle SyncOutcome = "idle"

	// SyncOutcomeError means at least one operation failed or conflicted
	// without resolution during the last session.
	SyncOutcomeError SyncOutcome = "error"
)

// Device carries the immutable registration attributes of a device.
type Device struct {
	DeviceID   string `json:"device_id"`
	UserID     string `json:"user_id"`
	DeviceName string `json:"device_name"`
	DeviceType string `json:"device_type"`
	Platform   string `json:"platform"`
	AppVersion string `json:"app_version"`
}

// DeviceSyncState is the registry record for one device. Records are never
// deleted; decommissioned devices are archived to preserve audit continuity.
type DeviceSyncState struct {
	Device

	IsOnline bool `json:"is_online"`

	// SyncInProgress is the mutual-exclusion flag guarding one session per
	// device at a time.
	SyncInProgress bool `json:"sync_in_progress"`

	// PendingOperations counts outbox entries still awaiting delivery.
	PendingOperations int `json:"pending_operations"`

	// EntityVersions records, per entity type, the highest server version
	// this device has pulled. Pull sessions resume from these watermarks.
	EntityVersions map[string]int64 `json:"entity_versions"`

	// EntityCounts records, per entity type, how many entities the device
	// has tracked changes for.
	EntityCounts map[string]int `json:"entity_counts"`

	// StorageUsedBytes accounts for payload bytes tracked through this
	// device, used for storage budgeting.
	StorageUsedBytes int64 `json:"storage_used_bytes"`

	LastSyncAt     *time.Time  `json:"last_sync_at,omitempty"`
	LastSyncStatus SyncOutcome `json:"last_sync_status,omitempty"`

	Archived bool `json:"archived"`

	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// EntityStatus describes where a synchronizable entity currently stands in
// its local/remote lifecycle.
type EntityStatus string

const (
	// EntityStatusPending marks an entity with local mutations that have not
	// yet been delivered to the server of record.
	EntityStatusPending EntityStatus = "pending"

	// EntityStatusSynced marks an entity whose local state matches the last
	// acknowledged server state.
	EntityStatusSynced EntityStatus = "synced"

	// EntityStatusConflict marks an entity whose pending local mutation
	// collided with a diverging server write and awaits resolution.
	EntityStatusConflict EntityStatus = "conflict"

	// EntityStatusFailed marks an entity whose last delivery attempt
	// exhausted its retry budget.
	EntityStatusFailed EntityStatus = "failed"
)

// SyncEntity is the authoritative local copy of one synchronizable record,
// keyed by (EntityType, EntityID). It is owned exclusively by the entity
// store; payloads are never mutated in place outside of it.
type SyncEntity struct {
	// EntityType names the application-level kind of the record,
	// e.g. "alert", "shelter", "weather_report", "risk_prediction".
	EntityType string `json:"entity_type"`

	// EntityID identifies the record within its type.
	EntityID string `json:"entity_id"`

	// Payload holds the opaque field/value content of the record.
	Payload map[string]any `json:"payload"`

	// Version counts accepted mutations. It starts at 0 on creation and is
	// incremented exactly once per accepted mutation; versions are never
	// reused.
	Version int64 `json:"version"`

	// Checksum is a deterministic SHA-256 hex digest of Payload, used for
	// cheap equality checks during sync and packaging.
	Checksum string `json:"checksum"`

	// Deleted marks a tombstone. Deleted entities are retained so that
	// downstream consistency checks stay valid.
	Deleted bool `json:"deleted"`

	Status EntityStatus `json:"status"`

	LocalModifiedAt  time.Time  `json:"local_modified_at"`
	ServerModifiedAt *time.Time `json:"server_modified_at,omitempty"`
}

// Key returns the (type, id) pair identifying the entity.
func (e SyncEntity) Key() EntityKey {
	return EntityKey{EntityType: e.EntityType, EntityID: e.EntityID}
}

// EntityKey identifies a SyncEntity.
type EntityKey struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

func (k EntityKey) String() string {
	return k.EntityType + "/" + k.EntityID
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// OperationType names the kind of mutation an outbox operation carries.
type OperationType string

const (
	OperationCreate OperationType = "create"
	OperationUpdate OperationType = "update"
	OperationDelete OperationType = "delete"
	OperationUpsert OperationType = "upsert"
)

// OperationStatus tracks an outbox operation through its delivery lifecycle.
type OperationStatus string

const (
	// OperationStatusPending means the operation is queued and awaiting
	// delivery by the next sync session of its device.
	OperationStatusPending OperationStatus = "pending"

	// OperationStatusProcessing means a sync session has dequeued the
	// operation and a delivery attempt is in flight.
	OperationStatusProcessing OperationStatus = "processing"

	// OperationStatusCompleted means the server of record acknowledged the
	// operation. Completed operations are never re-delivered.
	OperationStatusCompleted OperationStatus = "completed"

	// OperationStatusFailed means the operation exhausted its retry budget
	// and now sits in the manual-intervention queue.
	OperationStatusFailed OperationStatus = "failed"

	// OperationStatusConflict means a version mismatch was detected and the
	// operation awaits conflict resolution.
	OperationStatusConflict OperationStatus = "conflict"
)

// Operation is one record per attempted mutation. Operations are created by
// TrackChange and transition solely under the sync orchestrator; they are
// retained until completed or permanently failed.
type Operation struct {
	// ID is a UUID assigned at enqueue time. Redelivery of the same ID is
	// idempotent on the remote peer.
	ID string `json:"id"`

	// Seq is the outbox sequence number. Delivery order within a device is
	// strictly ascending by Seq (creation-time FIFO).
	Seq int64 `json:"seq"`

	Type       OperationType `json:"type"`
	EntityType string        `json:"entity_type"`
	EntityID   string        `json:"entity_id"`

	// Payload is the full post-mutation entity payload. Nil for deletes.
	Payload map[string]any `json:"payload,omitempty"`

	// PreviousPayload, when supplied by the caller, is used to compute the
	// changed-fields list of the emitted change event.
	PreviousPayload map[string]any `json:"previous_payload,omitempty"`

	// Version is the entity version this operation expects to produce. It
	// must equal the entity's current version at acceptance; any other value
	// observed remotely is a conflict.
	Version int64 `json:"version"`

	DeviceID string `json:"device_id"`
	UserID   string `json:"user_id"`

	Status     OperationStatus `json:"status"`
	RetryCount int             `json:"retry_count"`
	MaxRetries int             `json:"max_retries"`

	// LastError records the most recent delivery failure, if any.
	LastError string `json:"last_error,omitempty"`

	// Resolution is attached when a conflict has been detected for this
	// operation. Nil otherwise.
	Resolution *ConflictResolution `json:"resolution,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

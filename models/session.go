// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// SessionStatus tracks one sync session through its lifetime.
type SessionStatus string

const (
	// SessionRunning means the session is actively pushing or pulling.
	SessionRunning SessionStatus = "running"

	// SessionCompleted means the session drained its work with no hard
	// failures.
	SessionCompleted SessionStatus = "completed"

	// SessionError means at least one operation permanently failed or a
	// conflict was left unresolved.
	SessionError SessionStatus = "error"

	// SessionPaused means the session was aborted mid-batch; still-pending
	// operations will be picked up FIFO by the next session.
	SessionPaused SessionStatus = "paused"
)

// SyncSession is a bounded record of one push/pull orchestration run for a
// single device. Immutable once CompletedAt is set.
type SyncSession struct {
	ID       string `json:"id"`
	DeviceID string `json:"device_id"`

	Status SessionStatus `json:"status"`

	OperationsPushed  int `json:"operations_pushed"`
	DeltasPulled      int `json:"deltas_pulled"`
	ConflictsResolved int `json:"conflicts_resolved"`
	ConflictsDeferred int `json:"conflicts_deferred"`

	// Errors lists hard failures encountered during the session. Transient
	// failures that remain within retry budget are not recorded here.
	Errors []string `json:"errors,omitempty"`

	BytesTransferred int64 `json:"bytes_transferred"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Duration returns the wall-clock length of the session, or zero while it is
// still running.
func (s SyncSession) Duration() time.Duration {
	if s.CompletedAt == nil {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

// SyncOptions tunes one StartSync invocation.
type SyncOptions struct {
	// Direction, when set, restricts the session to pushing or pulling
	// only. Empty means both phases run.
	Direction SyncDirection `json:"direction,omitempty"`

	// EntityTypes, when non-empty, restricts the session to the named
	// types.
	EntityTypes []string `json:"entity_types,omitempty"`

	// Force aborts a session already running for the device instead of
	// failing with a sync-in-progress error.
	Force bool `json:"force,omitempty"`
}

// WantsType reports whether the options include the given entity type.
func (o SyncOptions) WantsType(entityType string) bool {
	if len(o.EntityTypes) == 0 {
		return true
	}
	for _, t := range o.EntityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}

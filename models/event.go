// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// EventKind names the category of a change event.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// ChangeEvent is a fact recording one entity-level change. Events are
// appended by TrackChange; only Propagated changes afterward, once the
// mutation reaches the server of record.
type ChangeEvent struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Kind       EventKind `json:"kind"`

	// ChangedFields lists the payload fields that differ from the previous
	// payload, when one was supplied. Empty for deletes.
	ChangedFields []string `json:"changed_fields,omitempty"`

	UserID   string `json:"user_id"`
	DeviceID string `json:"device_id"`

	// Version is the entity version produced by the change.
	Version int64 `json:"version"`

	// Propagated is set once the change has been acknowledged by the server
	// of record.
	Propagated bool `json:"propagated"`

	CreatedAt time.Time `json:"created_at"`
}

// EventFilter narrows event subscriptions and queries. Zero-value fields
// match everything.
type EventFilter struct {
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   string    `json:"entity_id,omitempty"`
	Kind       EventKind `json:"kind,omitempty"`
	DeviceID   string    `json:"device_id,omitempty"`
}

// Matches reports whether the event satisfies every set field of the filter.
func (f EventFilter) Matches(ev ChangeEvent) bool {
	if f.EntityType != "" && f.EntityType != ev.EntityType {
		return false
	}
	if f.EntityID != "" && f.EntityID != ev.EntityID {
		return false
	}
	if f.Kind != "" && f.Kind != ev.Kind {
		return false
	}
	if f.DeviceID != "" && f.DeviceID != ev.DeviceID {
		return false
	}
	return true
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import "errors"

var (
	// ErrUnknownEntityType is returned when an operation names an entity
	// type with no active sync configuration.
	ErrUnknownEntityType = errors.New("unknown entity type")

	// ErrSyncDisabled is returned by TrackChange when synchronization is
	// disabled for the entity type.
	ErrSyncDisabled = errors.New("sync is disabled for entity type")

	// ErrInvalidOperationType is returned when TrackChange receives an
	// operation type outside {create, update, delete, upsert}.
	ErrInvalidOperationType = errors.New("invalid operation type")

	// ErrInvalidDirection is returned when a sync config update names a
	// direction outside {push, pull, bidirectional}.
	ErrInvalidDirection = errors.New("invalid sync direction")

	// ErrInvalidStrategy is returned when a sync config update names an
	// unknown conflict strategy.
	ErrInvalidStrategy = errors.New("invalid conflict strategy")

	// ErrNoEntityTypes is returned when an offline package is requested
	// without any entity types.
	ErrNoEntityTypes = errors.New("no entity types provided")

	// ErrOfflineNotAllowed is returned when an offline package names an
	// entity type whose config forbids offline caching.
	ErrOfflineNotAllowed = errors.New("offline caching is not permitted for entity type")

	// ErrInvalidResolutionChoice is returned when a manual conflict
	// resolution names a choice outside {client, server, custom}.
	ErrInvalidResolutionChoice = errors.New("invalid manual resolution choice")

	// ErrCustomPayloadRequired is returned when a manual resolution selects
	// custom without supplying a payload.
	ErrCustomPayloadRequired = errors.New("custom resolution requires a payload")
)

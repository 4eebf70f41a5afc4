// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import "errors"

// Sentinel errors returned by store methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrEntityNotFound is returned when a lookup targets an entity
	// (identified by entity type and id) that the store has never seen.
	ErrEntityNotFound = errors.New("entity was not found")

	// ErrVersionConflict is returned when an optimistic-locking check fails:
	// the version supplied by the writer does not match the current version
	// held by the entity store, meaning another writer has modified the
	// record since the caller last read it.
	ErrVersionConflict = errors.New("entity version conflict occurred")

	// ErrOperationNotFound is returned when an outbox lookup targets an
	// unknown operation id.
	ErrOperationNotFound = errors.New("operation was not found")

	// ErrOperationNotConflicted is returned when a manual resolution is
	// requested for an operation that is not in the conflict state.
	ErrOperationNotConflicted = errors.New("operation is not in conflict state")

	// ErrDeviceNotFound is returned when a registry lookup targets an
	// unknown device id.
	ErrDeviceNotFound = errors.New("device was not found")
)

// Low-level persistence errors. These are returned (or wrapped) by the
// key-value backends when a storage-level operation fails before any domain
// logic can be applied.
var (
	// ErrOpeningDatabase is returned when the bbolt database file cannot be
	// opened or its buckets cannot be initialized.
	ErrOpeningDatabase = errors.New("failed to open key-value database")

	// ErrWritingRecord is returned when persisting a record to the
	// key-value backend fails.
	ErrWritingRecord = errors.New("failed to write key-value record")

	// ErrReadingRecord is returned when loading records from the key-value
	// backend fails.
	ErrReadingRecord = errors.New("failed to read key-value record")

	// ErrDecodingRecord is returned when a persisted record cannot be
	// decoded back into its domain type.
	ErrDecodingRecord = errors.New("failed to decode key-value record")
)

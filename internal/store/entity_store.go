// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

// EntityStore holds the authoritative local copy of every synchronizable
// entity. All payload mutations flow through its methods; the internal mutex
// serializes writers so that the version check behaves as an optimistic lock
// (compare-and-increment) and two conflicting writers never both succeed at
// the same version.
//
// The working set lives in memory and writes through to the configured [KV]
// so that state survives restarts.
type EntityStore struct {
	kv    KV
	clock utils.Clock

	mu       sync.RWMutex
	entities map[models.EntityKey]models.SyncEntity
}

// NewEntityStore constructs an EntityStore and loads any previously
// persisted entities from kv.
func NewEntityStore(kv KV, clock utils.Clock) (*EntityStore, error) {
	s := &EntityStore{
		kv:       kv,
		clock:    clock,
		entities: make(map[models.EntityKey]models.SyncEntity),
	}

	err := kv.ForEach(bucketEntities, func(_ string, value []byte) error {
		var entity models.SyncEntity
		if err := json.Unmarshal(value, &entity); err != nil {
			return fmt.Errorf("%w: %w", ErrDecodingRecord, err)
		}
		s.entities[entity.Key()] = entity
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}

	return s, nil
}

// Upsert applies a local mutation to the entity identified by (entityType,
// entityID). A new entity starts at version 0; an existing one is bumped by
// exactly 1. The checksum is recomputed, LocalModifiedAt is stamped, and the
// status returns to pending until the change is delivered.
func (s *EntityStore) Upsert(entityType, entityID string, payload map[string]any) (models.SyncEntity, error) {
	checksum, err := utils.Checksum(payload)
	if err != nil {
		return models.SyncEntity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.EntityKey{EntityType: entityType, EntityID: entityID}

	entity, exists := s.entities[key]
	if !exists {
		entity = models.SyncEntity{
			EntityType: entityType,
			EntityID:   entityID,
			Version:    0,
		}
	} else {
		entity.Version++
	}

	entity.Payload = clonePayload(payload)
	entity.Checksum = checksum
	entity.Deleted = false
	entity.Status = models.EntityStatusPending
	entity.LocalModifiedAt = s.clock.Now()

	if err := s.persistLocked(entity); err != nil {
		return models.SyncEntity{}, err
	}
	s.entities[key] = entity

	return entity, nil
}

// Tombstone marks the entity deleted without removing its row, keeping
// downstream consistency checks valid. The version is bumped like any other
// accepted mutation and the tombstone becomes a pending change.
func (s *EntityStore) Tombstone(entityType, entityID string) (models.SyncEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.EntityKey{EntityType: entityType, EntityID: entityID}

	entity, exists := s.entities[key]
	if !exists {
		return models.SyncEntity{}, fmt.Errorf("tombstone %s: %w", key, ErrEntityNotFound)
	}

	entity.Version++
	entity.Deleted = true
	entity.Status = models.EntityStatusPending
	entity.LocalModifiedAt = s.clock.Now()

	if err := s.persistLocked(entity); err != nil {
		return models.SyncEntity{}, err
	}
	s.entities[key] = entity

	return entity, nil
}

// Get returns the entity or ErrEntityNotFound.
func (s *EntityStore) Get(entityType, entityID string) (models.SyncEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, exists := s.entities[models.EntityKey{EntityType: entityType, EntityID: entityID}]
	if !exists {
		return models.SyncEntity{}, ErrEntityNotFound
	}

	return entity, nil
}

// ListByType returns all live entities of the given type, sorted by entity
// id for deterministic iteration. Tombstones are included only when
// includeDeleted is set.
func (s *EntityStore) ListByType(entityType string, includeDeleted bool) []models.SyncEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.SyncEntity
	for _, entity := range s.entities {
		if entity.EntityType != entityType {
			continue
		}
		if entity.Deleted && !includeDeleted {
			continue
		}
		out = append(out, entity)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })

	return out
}

// CountByType returns the number of live entities of the given type.
func (s *EntityStore) CountByType(entityType string) int {
	return len(s.ListByType(entityType, false))
}

// SetStatus transitions the entity's sync status without touching payload or
// version. Used by the orchestrator to flag conflicts and permanent
// failures.
func (s *EntityStore) SetStatus(entityType, entityID string, status models.EntityStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.EntityKey{EntityType: entityType, EntityID: entityID}

	entity, exists := s.entities[key]
	if !exists {
		return fmt.Errorf("set status %s: %w", key, ErrEntityNotFound)
	}

	entity.Status = status
	if err := s.persistLocked(entity); err != nil {
		return err
	}
	s.entities[key] = entity

	return nil
}

// Acknowledge records a server acknowledgement of a pushed mutation: the
// entity becomes synced and its ServerModifiedAt is stamped. The version is
// raised to the server's if the server is ahead; it is never lowered, so
// version monotonicity holds even when acknowledgements arrive out of order.
func (s *EntityStore) Acknowledge(entityType, entityID string, serverVersion int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.EntityKey{EntityType: entityType, EntityID: entityID}

	entity, exists := s.entities[key]
	if !exists {
		return fmt.Errorf("acknowledge %s: %w", key, ErrEntityNotFound)
	}

	if serverVersion > entity.Version {
		entity.Version = serverVersion
	}
	entity.Status = models.EntityStatusSynced
	entity.ServerModifiedAt = &at

	if err := s.persistLocked(entity); err != nil {
		return err
	}
	s.entities[key] = entity

	return nil
}

// ApplyRemote applies a server-originated delta.
//
// A delta conflicts when the local entity still carries undelivered local
// state (status pending or conflict) and its content differs from the
// server's; in that case nothing is written and the local copy is returned
// so the caller can route it through the conflict resolver with client and
// server roles reversed. A delta at or below the local version is already
// known and is skipped.
func (s *EntityStore) ApplyRemote(delta models.RemoteDelta) (applied bool, conflicted *models.SyncEntity, err error) {
	checksum, err := utils.Checksum(delta.Payload)
	if err != nil {
		return false, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.EntityKey{EntityType: delta.EntityType, EntityID: delta.EntityID}
	entity, exists := s.entities[key]

	if exists {
		unsynced := entity.Status == models.EntityStatusPending || entity.Status == models.EntityStatusConflict
		if unsynced && entity.Checksum != checksum {
			local := entity
			return false, &local, nil
		}
		if delta.Version <= entity.Version {
			return false, nil, nil
		}
	} else {
		entity = models.SyncEntity{
			EntityType: delta.EntityType,
			EntityID:   delta.EntityID,
		}
	}

	at := delta.ModifiedAt
	entity.Payload = clonePayload(delta.Payload)
	entity.Checksum = checksum
	entity.Version = delta.Version
	entity.Deleted = delta.Deleted
	entity.Status = models.EntityStatusSynced
	entity.LocalModifiedAt = s.clock.Now()
	entity.ServerModifiedAt = &at

	if err := s.persistLocked(entity); err != nil {
		return false, nil, err
	}
	s.entities[key] = entity

	return true, nil, nil
}

// ApplyResolution installs a conflict-resolution outcome. expectedVersion is
// the version the caller last observed; the write is rejected with
// ErrVersionConflict if another writer advanced the entity in the meantime.
// The entity lands at version, marked pending when the resolved payload
// still needs to be pushed, synced otherwise.
func (s *EntityStore) ApplyResolution(entityType, entityID string, payload map[string]any, expectedVersion, version int64, at time.Time, needsPush bool) (models.SyncEntity, error) {
	checksum, err := utils.Checksum(payload)
	if err != nil {
		return models.SyncEntity{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.EntityKey{EntityType: entityType, EntityID: entityID}

	entity, exists := s.entities[key]
	if !exists {
		return models.SyncEntity{}, fmt.Errorf("apply resolution %s: %w", key, ErrEntityNotFound)
	}
	if entity.Version != expectedVersion {
		return models.SyncEntity{}, fmt.Errorf("apply resolution %s: expected version %d, have %d: %w",
			key, expectedVersion, entity.Version, ErrVersionConflict)
	}

	entity.Payload = clonePayload(payload)
	entity.Checksum = checksum
	if version > entity.Version {
		entity.Version = version
	}
	entity.Deleted = false
	entity.ServerModifiedAt = &at
	entity.LocalModifiedAt = s.clock.Now()
	if needsPush {
		entity.Status = models.EntityStatusPending
	} else {
		entity.Status = models.EntityStatusSynced
	}

	if err := s.persistLocked(entity); err != nil {
		return models.SyncEntity{}, err
	}
	s.entities[key] = entity

	return entity, nil
}

func (s *EntityStore) persistLocked(entity models.SyncEntity) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode entity %s: %w", entity.Key(), err)
	}

	if err := s.kv.Put(bucketEntities, entity.Key().String(), data); err != nil {
		return fmt.Errorf("persist entity %s: %w", entity.Key(), err)
	}

	return nil
}

func clonePayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	return maps.Clone(payload)
}

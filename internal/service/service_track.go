// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/alertaid/syncengine/models"
)

// TrackChangeRequest carries the arguments of one tracked local mutation.
type TrackChangeRequest struct {
	OperationType models.OperationType `json:"operation_type"`
	EntityType    string               `json:"entity_type"`
	EntityID      string               `json:"entity_id"`

	Payload map[string]any `json:"payload,omitempty"`

	// PreviousPayload, when supplied, narrows the emitted change event's
	// ChangedFields to the fields that actually differ.
	PreviousPayload map[string]any `json:"previous_payload,omitempty"`

	DeviceID string `json:"device_id"`
	UserID   string `json:"user_id"`
}

// TrackChange records one local mutation: the entity store is updated (with
// its version bumped exactly once), an operation is appended to the outbox
// for the originating device, and a change event is emitted.
//
// Fails with ErrSyncDisabled when the entity type's config is disabled, and
// with ErrUnknownEntityType when no config exists for it.
func (e *Engine) TrackChange(req TrackChangeRequest) (models.Operation, error) {
	cfg, err := e.GetSyncConfig(req.EntityType)
	if err != nil {
		return models.Operation{}, err
	}
	if !cfg.Enabled {
		return models.Operation{}, fmt.Errorf("entity type %q: %w", req.EntityType, ErrSyncDisabled)
	}

	if _, err := e.devices.Get(req.DeviceID); err != nil {
		return models.Operation{}, fmt.Errorf("track change: %w", err)
	}

	var entity models.SyncEntity
	switch req.OperationType {
	case models.OperationCreate, models.OperationUpdate, models.OperationUpsert:
		entity, err = e.entities.Upsert(req.EntityType, req.EntityID, req.Payload)
	case models.OperationDelete:
		entity, err = e.entities.Tombstone(req.EntityType, req.EntityID)
	default:
		return models.Operation{}, fmt.Errorf("operation type %q: %w", req.OperationType, ErrInvalidOperationType)
	}
	if err != nil {
		return models.Operation{}, fmt.Errorf("track change: %w", err)
	}

	op := models.Operation{
		ID:              e.ids.Generate(),
		Type:            req.OperationType,
		EntityType:      req.EntityType,
		EntityID:        req.EntityID,
		PreviousPayload: req.PreviousPayload,
		Version:         entity.Version,
		DeviceID:        req.DeviceID,
		UserID:          req.UserID,
		MaxRetries:      cfg.MaxRetries,
	}
	if req.OperationType != models.OperationDelete {
		op.Payload = req.Payload
	}

	op, err = e.outbox.Enqueue(op)
	if err != nil {
		return models.Operation{}, fmt.Errorf("enqueue operation: %w", err)
	}

	if err := e.devices.RecordChange(req.DeviceID, req.EntityType, payloadBytes(req.Payload)); err != nil {
		e.log.Warn().Err(err).Str("device_id", req.DeviceID).Msg("failed to account tracked change")
	}

	event := models.ChangeEvent{
		ID:            e.ids.Generate(),
		EntityType:    req.EntityType,
		EntityID:      req.EntityID,
		Kind:          eventKind(req.OperationType, entity.Version),
		ChangedFields: changedFields(req.OperationType, req.Payload, req.PreviousPayload),
		UserID:        req.UserID,
		DeviceID:      req.DeviceID,
		Version:       entity.Version,
		CreatedAt:     e.clock.Now(),
	}
	e.events.Append(event)
	e.bus.Publish(event)

	e.log.Debug().
		Str("operation_id", op.ID).
		Str("entity", req.EntityType+"/"+req.EntityID).
		Int64("version", entity.Version).
		Msg("change tracked")

	return op, nil
}

func eventKind(opType models.OperationType, version int64) models.EventKind {
	switch {
	case opType == models.OperationDelete:
		return models.EventDeleted
	case version == 0:
		return models.EventCreated
	default:
		return models.EventUpdated
	}
}

// changedFields lists the payload fields that differ from the previous
// payload, sorted for determinism. Without a previous payload every field
// counts as changed. Deletes report no fields.
func changedFields(opType models.OperationType, payload, previous map[string]any) []string {
	if opType == models.OperationDelete || len(payload) == 0 {
		return nil
	}

	var fields []string
	for name, value := range payload {
		prev, existed := previous[name]
		if !existed || !reflect.DeepEqual(prev, value) {
			fields = append(fields, name)
		}
	}
	for name := range previous {
		if _, still := payload[name]; !still {
			fields = append(fields, name)
		}
	}

	sort.Strings(fields)

	return fields
}

func payloadBytes(payload map[string]any) int64 {
	if payload == nil {
		return 0
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return 0
	}
	return int64(len(data))
}

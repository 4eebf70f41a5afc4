// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/models"
)

func TestTrackChange_CreateUpdateDelete(t *testing.T) {
	f := newTestEngine(t)
	f.registerDevice(t, "device-1")

	created := f.track(t, "device-1", models.OperationCreate, "alert", "alert-1", map[string]any{"severity": "high"})
	assert.Equal(t, int64(0), created.Version)
	assert.Equal(t, models.OperationStatusPending, created.Status)

	updated := f.track(t, "device-1", models.OperationUpdate, "alert", "alert-1", map[string]any{"severity": "low"})
	assert.Equal(t, int64(1), updated.Version, "the entity version is bumped exactly once per tracked change")

	deleted := f.track(t, "device-1", models.OperationDelete, "alert", "alert-1", nil)
	assert.Equal(t, int64(2), deleted.Version)
	assert.Nil(t, deleted.Payload, "deletes carry no payload")

	pending := f.engine.GetPendingOperations("device-1", "")
	require.Len(t, pending, 3)
	assert.Less(t, pending[0].Seq, pending[1].Seq)
	assert.Less(t, pending[1].Seq, pending[2].Seq)

	state, err := f.engine.GetDevice("device-1")
	require.NoError(t, err)
	assert.Equal(t, 3, state.PendingOperations)
}

func TestTrackChange_Rejections(t *testing.T) {
	f := newTestEngine(t)
	f.registerDevice(t, "device-1")

	_, err := f.engine.TrackChange(TrackChangeRequest{
		OperationType: models.OperationCreate,
		EntityType:    "satellite_feed",
		EntityID:      "feed-1",
		DeviceID:      "device-1",
	})
	assert.ErrorIs(t, err, ErrUnknownEntityType)

	disabled := false
	_, err = f.engine.UpdateSyncConfig("alert", models.SyncConfigPatch{Enabled: &disabled})
	require.NoError(t, err)

	_, err = f.engine.TrackChange(TrackChangeRequest{
		OperationType: models.OperationCreate,
		EntityType:    "alert",
		EntityID:      "alert-1",
		DeviceID:      "device-1",
	})
	assert.ErrorIs(t, err, ErrSyncDisabled)

	_, err = f.engine.TrackChange(TrackChangeRequest{
		OperationType: models.OperationCreate,
		EntityType:    "shelter",
		EntityID:      "shelter-1",
		DeviceID:      "ghost-device",
	})
	assert.ErrorIs(t, err, store.ErrDeviceNotFound)

	_, err = f.engine.TrackChange(TrackChangeRequest{
		OperationType: models.OperationType("merge"),
		EntityType:    "shelter",
		EntityID:      "shelter-1",
		DeviceID:      "device-1",
	})
	assert.ErrorIs(t, err, ErrInvalidOperationType)
}

func TestTrackChange_EmitsChangeEvents(t *testing.T) {
	f := newTestEngine(t)
	f.registerDevice(t, "device-1")

	events, unsub := f.engine.Subscribe(models.EventFilter{EntityType: "alert"})
	defer unsub()

	f.track(t, "device-1", models.OperationCreate, "alert", "alert-1", map[string]any{"severity": "high", "area": "coastal"})

	ev := <-events
	assert.Equal(t, models.EventCreated, ev.Kind)
	assert.Equal(t, []string{"area", "severity"}, ev.ChangedFields)
	assert.Equal(t, int64(0), ev.Version)

	_, err := f.engine.TrackChange(TrackChangeRequest{
		OperationType:   models.OperationUpdate,
		EntityType:      "alert",
		EntityID:        "alert-1",
		Payload:         map[string]any{"severity": "low", "area": "coastal"},
		PreviousPayload: map[string]any{"severity": "high", "area": "coastal"},
		DeviceID:        "device-1",
		UserID:          "user-1",
	})
	require.NoError(t, err)

	ev = <-events
	assert.Equal(t, models.EventUpdated, ev.Kind)
	assert.Equal(t, []string{"severity"}, ev.ChangedFields,
		"with a previous payload only the differing fields are reported")

	f.track(t, "device-1", models.OperationDelete, "alert", "alert-1", nil)
	ev = <-events
	assert.Equal(t, models.EventDeleted, ev.Kind)
	assert.Nil(t, ev.ChangedFields)

	// The retained log serves the same events most-recent-first.
	log := f.engine.GetChangeEvents(models.EventFilter{EntityType: "alert"}, 0)
	require.Len(t, log, 3)
	assert.Equal(t, models.EventDeleted, log[0].Kind)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertaid/syncengine/models"
)

func TestGetAnalytics(t *testing.T) {
	f := newTestEngine(t)
	f.registerDevice(t, "device-1")

	f.track(t, "device-1", models.OperationCreate, "alert", "alert-1", map[string]any{"severity": "high"})
	f.track(t, "device-1", models.OperationUpdate, "alert", "alert-1", map[string]any{"severity": "low"})
	f.track(t, "device-1", models.OperationCreate, "shelter", "shelter-1", map[string]any{"capacity": 120})

	_, err := f.engine.StartSync(context.Background(), "device-1", models.SyncOptions{})
	require.NoError(t, err)

	got := f.engine.GetAnalytics(0)

	assert.Equal(t, 3, got.TotalOperations)
	assert.Equal(t, 3, got.OperationsByStatus[models.OperationStatusCompleted])
	assert.Equal(t, 2, got.OperationsByType[string(models.OperationCreate)])
	assert.Equal(t, 1, got.OperationsByType[string(models.OperationUpdate)])
	assert.Equal(t, 2, got.OperationsByEntityType["alert"])
	assert.Equal(t, 1, got.OperationsByEntityType["shelter"])
	assert.Equal(t, 3, got.OperationsByDevice["device-1"])
	assert.Equal(t, 1, got.SessionsCompleted)
	assert.Zero(t, got.SessionsErrored)
	assert.Equal(t, 3, got.EventsPublished)
	assert.Positive(t, got.BytesTransferred)
}

func TestGetAnalytics_ConflictBreakdownByStrategy(t *testing.T) {
	f := newTestEngine(t)
	f.registerDevice(t, "device-1")
	f.setStrategy(t, "alert", models.StrategyServerWins)
	f.setStrategy(t, "shelter", models.StrategyManual)

	now := f.clock.Now()
	f.peer.SeedEntity(models.RemoteDelta{
		EntityType: "alert", EntityID: "alert-1",
		Payload: map[string]any{"severity": "low"}, Version: 3, ModifiedAt: now,
	})
	f.peer.SeedEntity(models.RemoteDelta{
		EntityType: "shelter", EntityID: "shelter-1",
		Payload: map[string]any{"capacity": 40}, Version: 2, ModifiedAt: now,
	})

	f.track(t, "device-1", models.OperationCreate, "alert", "alert-1", map[string]any{"severity": "high"})
	f.track(t, "device-1", models.OperationCreate, "shelter", "shelter-1", map[string]any{"capacity": 120})

	session, err := f.engine.StartSync(context.Background(), "device-1", models.SyncOptions{Direction: models.DirectionPush})
	require.NoError(t, err)
	require.Equal(t, 1, session.ConflictsResolved)
	require.Equal(t, 1, session.ConflictsDeferred)

	got := f.engine.GetAnalytics(0)
	assert.Equal(t, 1, got.ConflictsByStrategy[models.StrategyServerWins],
		"a conflict the server won without a re-push still counts")
	assert.Equal(t, 1, got.ConflictsByStrategy[models.StrategyManual])
	assert.Equal(t, 1, got.ConflictsResolved)
	assert.Equal(t, 1, got.ConflictsDeferred)
}

func TestGetAnalytics_WindowExcludesOlderActivity(t *testing.T) {
	f := newTestEngine(t)
	f.registerDevice(t, "device-1")

	f.track(t, "device-1", models.OperationCreate, "alert", "alert-1", map[string]any{"severity": "high"})

	// Later activity only.
	f.clock.Advance(2 * time.Hour)
	f.track(t, "device-1", models.OperationCreate, "shelter", "shelter-1", map[string]any{"capacity": 120})

	got := f.engine.GetAnalytics(time.Hour)
	assert.Equal(t, 1, got.TotalOperations, "operations older than the window are excluded")
	assert.Equal(t, 1, got.EventsPublished)

	all := f.engine.GetAnalytics(0)
	assert.Equal(t, 2, all.TotalOperations)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/models"
)

func TestCreateOfflinePackage(t *testing.T) {
	f := newTestEngine(t)
	f.registerDevice(t, "device-1")

	f.track(t, "device-1", models.OperationCreate, "alert", "alert-2", map[string]any{"severity": "low"})
	f.track(t, "device-1", models.OperationCreate, "alert", "alert-1", map[string]any{"severity": "high"})
	f.track(t, "device-1", models.OperationCreate, "shelter", "shelter-1", map[string]any{"capacity": 120})

	// Tombstoned entities stay out of the export.
	f.track(t, "device-1", models.OperationCreate, "alert", "alert-3", map[string]any{"severity": "low"})
	f.track(t, "device-1", models.OperationDelete, "alert", "alert-3", nil)

	pkg, err := f.engine.CreateOfflinePackage("user-1", "device-1", []string{"alert", "shelter"})
	require.NoError(t, err)

	assert.Equal(t, 3, pkg.TotalEntities)
	assert.Equal(t, int64(1), pkg.Version)
	assert.Positive(t, pkg.SizeBytes)
	assert.NotEmpty(t, pkg.Checksum)

	require.Len(t, pkg.Data, 2)
	assert.Equal(t, "alert", pkg.Data[0].EntityType)
	require.Len(t, pkg.Data[0].Entities, 2)
	assert.Equal(t, "alert-1", pkg.Data[0].Entities[0].EntityID, "entities are ordered for determinism")

	require.NotNil(t, pkg.ExpiresAt)
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), *pkg.ExpiresAt)

	ok, err := f.engine.VerifyOfflinePackage(pkg)
	require.NoError(t, err)
	assert.True(t, ok)

	// Tampering breaks the checksum.
	pkg.Data[0].Entities[0].Payload["severity"] = "forged"
	ok, err = f.engine.VerifyOfflinePackage(pkg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateOfflinePackage_VersionIsMonotonic(t *testing.T) {
	f := newTestEngine(t)
	f.registerDevice(t, "device-1")

	first, err := f.engine.CreateOfflinePackage("user-1", "device-1", []string{"alert"})
	require.NoError(t, err)
	second, err := f.engine.CreateOfflinePackage("user-1", "device-1", []string{"alert"})
	require.NoError(t, err)

	assert.Greater(t, second.Version, first.Version)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateOfflinePackage_Rejections(t *testing.T) {
	f := newTestEngine(t)
	f.registerDevice(t, "device-1")

	_, err := f.engine.CreateOfflinePackage("user-1", "ghost", []string{"alert"})
	assert.ErrorIs(t, err, store.ErrDeviceNotFound)

	_, err = f.engine.CreateOfflinePackage("user-1", "device-1", nil)
	assert.ErrorIs(t, err, ErrNoEntityTypes)

	_, err = f.engine.CreateOfflinePackage("user-1", "device-1", []string{"satellite_feed"})
	assert.ErrorIs(t, err, ErrUnknownEntityType)

	offline := false
	_, err = f.engine.UpdateSyncConfig("alert", models.SyncConfigPatch{AllowOffline: &offline})
	require.NoError(t, err)

	_, err = f.engine.CreateOfflinePackage("user-1", "device-1", []string{"alert"})
	assert.ErrorIs(t, err, ErrOfflineNotAllowed)
}

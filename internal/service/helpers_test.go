// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alertaid/syncengine/internal/adapter"
	"github.com/alertaid/syncengine/internal/config"
	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

// engineFixture bundles an Engine wired to the in-memory KV and the
// simulated peer, with a programmable clock so nothing sleeps.
type engineFixture struct {
	engine *Engine
	peer   *adapter.MemoryPeer
	clock  *utils.FixedClock
	kv     store.KV
}

func newTestEngine(t *testing.T) *engineFixture {
	t.Helper()

	clock := &utils.FixedClock{Instant: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	kv := store.NewMemoryKV()
	peer := adapter.NewMemoryPeer(clock)

	cfg := config.Engine{
		DefaultMaxRetries:    3,
		DefaultBatchSize:     100,
		EventBufferSize:      100,
		SubscriberBufferSize: 8,
		PackageTTL:           24 * time.Hour,
		SessionHistorySize:   16,
	}

	engine, err := NewEngine(cfg, kv, peer, clock, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	return &engineFixture{engine: engine, peer: peer, clock: clock, kv: kv}
}

func (f *engineFixture) registerDevice(t *testing.T, deviceID string) {
	t.Helper()

	_, err := f.engine.RegisterDevice(models.Device{
		DeviceID:   deviceID,
		UserID:     "user-1",
		DeviceName: "field tablet",
		DeviceType: "tablet",
		Platform:   "android",
		AppVersion: "2.4.0",
	})
	require.NoError(t, err)
}

func (f *engineFixture) track(t *testing.T, deviceID string, opType models.OperationType, entityType, entityID string, payload map[string]any) models.Operation {
	t.Helper()

	op, err := f.engine.TrackChange(TrackChangeRequest{
		OperationType: opType,
		EntityType:    entityType,
		EntityID:      entityID,
		Payload:       payload,
		DeviceID:      deviceID,
		UserID:        "user-1",
	})
	require.NoError(t, err)

	return op
}

func (f *engineFixture) setStrategy(t *testing.T, entityType string, strategy models.ConflictStrategy) {
	t.Helper()

	_, err := f.engine.UpdateSyncConfig(entityType, models.SyncConfigPatch{ConflictStrategy: &strategy})
	require.NoError(t, err)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package workers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertaid/syncengine/internal/adapter"
	"github.com/alertaid/syncengine/internal/config"
	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/service"
	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

func newTestJob(t *testing.T) (*SyncJob, *service.Engine, *adapter.MemoryPeer) {
	t.Helper()

	clock := utils.SystemClock{}
	peer := adapter.NewMemoryPeer(clock)

	cfg := config.Engine{
		DefaultMaxRetries:    3,
		DefaultBatchSize:     100,
		EventBufferSize:      100,
		SubscriberBufferSize: 8,
		SessionHistorySize:   16,
	}

	engine, err := service.NewEngine(cfg, store.NewMemoryKV(), peer, clock, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	return NewSyncJob(engine, logger.Nop()), engine, peer
}

func TestSyncJob_SyncsOnlineDevices(t *testing.T) {
	job, engine, peer := newTestJob(t)

	_, err := engine.RegisterDevice(models.Device{DeviceID: "device-1", UserID: "user-1"})
	require.NoError(t, err)
	require.NoError(t, engine.UpdateDeviceOnlineStatus("device-1", true))

	// An offline device must be skipped.
	_, err = engine.RegisterDevice(models.Device{DeviceID: "device-2", UserID: "user-1"})
	require.NoError(t, err)

	_, err = engine.TrackChange(service.TrackChangeRequest{
		OperationType: models.OperationCreate,
		EntityType:    "alert",
		EntityID:      "alert-1",
		Payload:       map[string]any{"severity": "high"},
		DeviceID:      "device-1",
		UserID:        "user-1",
	})
	require.NoError(t, err)

	job.Start(context.Background(), 10*time.Millisecond)
	defer job.Stop()

	require.Eventually(t, func() bool {
		return len(peer.PushedOrder()) == 1
	}, 2*time.Second, 5*time.Millisecond, "the scheduled job should deliver the pending operation")

	state, err := engine.GetDevice("device-1")
	require.NoError(t, err)
	assert.NotNil(t, state.LastSyncAt)

	skipped, err := engine.GetDevice("device-2")
	require.NoError(t, err)
	assert.Nil(t, skipped.LastSyncAt, "offline devices are not synced")
}

func TestSyncJob_StopIsIdempotent(t *testing.T) {
	job, _, _ := newTestJob(t)

	job.Stop() // not started yet

	job.Start(context.Background(), 10*time.Millisecond)
	job.Stop()
	job.Stop()
}

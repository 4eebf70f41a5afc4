// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alertaid/syncengine/internal/adapter"
	"github.com/alertaid/syncengine/internal/config"
	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/mock"
	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

func newMockedEngine(t *testing.T) (*Engine, *mock.MockRemotePeer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	peer := mock.NewMockRemotePeer(ctrl)

	clock := &utils.FixedClock{Instant: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	cfg := config.Engine{
		DefaultMaxRetries:    3,
		DefaultBatchSize:     100,
		EventBufferSize:      100,
		SubscriberBufferSize: 8,
		SessionHistorySize:   16,
	}

	engine, err := NewEngine(cfg, store.NewMemoryKV(), peer, clock, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	_, err = engine.RegisterDevice(models.Device{DeviceID: "device-1", UserID: "user-1"})
	require.NoError(t, err)

	return engine, peer
}

func TestStartSync_NonTransientPushErrorFailsImmediately(t *testing.T) {
	engine, peer := newMockedEngine(t)

	op, err := engine.TrackChange(TrackChangeRequest{
		OperationType: models.OperationCreate,
		EntityType:    "alert",
		EntityID:      "alert-1",
		Payload:       map[string]any{"severity": "high"},
		DeviceID:      "device-1",
		UserID:        "user-1",
	})
	require.NoError(t, err)

	// A rejection that is not a version conflict and not transient must not
	// consume the retry budget one round at a time.
	peer.EXPECT().
		Push(gomock.Any(), gomock.Any()).
		Return(models.PushAck{}, errors.New("payload rejected by schema validation"))
	peer.EXPECT().
		Pull(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	session, err := engine.StartSync(context.Background(), "device-1", models.SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.SessionError, session.Status)
	require.NotEmpty(t, session.Errors)

	failed := engine.GetFailedOperations("device-1")
	require.Len(t, failed, 1)
	assert.Equal(t, op.ID, failed[0].ID)
	assert.Equal(t, "payload rejected by schema validation", failed[0].LastError)
}

func TestStartSync_ConflictSnapshotFetchFailureIsRetried(t *testing.T) {
	engine, peer := newMockedEngine(t)

	_, err := engine.TrackChange(TrackChangeRequest{
		OperationType: models.OperationCreate,
		EntityType:    "alert",
		EntityID:      "alert-1",
		Payload:       map[string]any{"severity": "high"},
		DeviceID:      "device-1",
		UserID:        "user-1",
	})
	require.NoError(t, err)

	// The push conflicts, but the snapshot fetch hits a transient outage:
	// the operation must return to pending for the next session.
	peer.EXPECT().
		Push(gomock.Any(), gomock.Any()).
		Return(models.PushAck{}, adapter.ErrVersionConflict)
	peer.EXPECT().
		Fetch(gomock.Any(), "alert", "alert-1").
		Return(models.RemoteDelta{}, adapter.ErrTemporarilyUnavailable)
	peer.EXPECT().
		Pull(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		AnyTimes()

	session, err := engine.StartSync(context.Background(), "device-1", models.SyncOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.SessionCompleted, session.Status)
	assert.Empty(t, session.Errors)

	pending := engine.GetPendingOperations("device-1", "alert")
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
}

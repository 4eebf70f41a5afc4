// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertaid/syncengine/models"
)

func TestEventLog_EvictsOldestFirst(t *testing.T) {
	l := NewEventLog(3)

	for i := 0; i < 5; i++ {
		l.Append(models.ChangeEvent{ID: fmt.Sprintf("ev-%d", i), EntityType: "alert"})
	}

	got := l.List(models.EventFilter{}, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "ev-4", got[0].ID, "most recent first")
	assert.Equal(t, "ev-2", got[2].ID, "ev-0 and ev-1 were evicted")
	assert.Equal(t, int64(5), l.TotalAppended())
}

func TestEventLog_FilterAndLimit(t *testing.T) {
	l := NewEventLog(10)

	l.Append(models.ChangeEvent{ID: "ev-0", EntityType: "alert", Kind: models.EventCreated, DeviceID: "device-1"})
	l.Append(models.ChangeEvent{ID: "ev-1", EntityType: "shelter", Kind: models.EventUpdated, DeviceID: "device-1"})
	l.Append(models.ChangeEvent{ID: "ev-2", EntityType: "alert", Kind: models.EventDeleted, DeviceID: "device-2"})

	byType := l.List(models.EventFilter{EntityType: "alert"}, 0)
	require.Len(t, byType, 2)
	assert.Equal(t, "ev-2", byType[0].ID)

	byKind := l.List(models.EventFilter{Kind: models.EventUpdated}, 0)
	require.Len(t, byKind, 1)
	assert.Equal(t, "ev-1", byKind[0].ID)

	byDevice := l.List(models.EventFilter{DeviceID: "device-1"}, 1)
	require.Len(t, byDevice, 1)
	assert.Equal(t, "ev-1", byDevice[0].ID)
}

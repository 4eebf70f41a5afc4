// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

func newTestEntityStore(t *testing.T) (*EntityStore, KV, *utils.FixedClock) {
	t.Helper()

	kv := NewMemoryKV()
	clock := &utils.FixedClock{Instant: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	s, err := NewEntityStore(kv, clock)
	require.NoError(t, err)

	return s, kv, clock
}

func TestEntityStore_Upsert_VersionMonotonicity(t *testing.T) {
	s, _, _ := newTestEntityStore(t)

	created, err := s.Upsert("alert", "alert-1", map[string]any{"severity": "high"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), created.Version)
	assert.Equal(t, models.EntityStatusPending, created.Status)

	updated, err := s.Upsert("alert", "alert-1", map[string]any{"severity": "low"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version, "each accepted mutation bumps the version by exactly 1")

	again, err := s.Upsert("alert", "alert-1", map[string]any{"severity": "low"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.Version)
}

func TestEntityStore_Upsert_ChecksumTracksPayload(t *testing.T) {
	s, _, _ := newTestEntityStore(t)

	first, err := s.Upsert("shelter", "shelter-1", map[string]any{"capacity": 120})
	require.NoError(t, err)

	second, err := s.Upsert("shelter", "shelter-1", map[string]any{"capacity": 80})
	require.NoError(t, err)
	assert.NotEqual(t, first.Checksum, second.Checksum)

	// Same content, regardless of construction order, yields the same sum.
	third, err := s.Upsert("shelter", "shelter-2", map[string]any{"capacity": 80})
	require.NoError(t, err)
	assert.Equal(t, second.Checksum, third.Checksum)
}

func TestEntityStore_Tombstone(t *testing.T) {
	s, _, _ := newTestEntityStore(t)

	_, err := s.Tombstone("alert", "missing")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	_, err = s.Upsert("alert", "alert-1", map[string]any{"severity": "high"})
	require.NoError(t, err)

	dead, err := s.Tombstone("alert", "alert-1")
	require.NoError(t, err)
	assert.True(t, dead.Deleted)
	assert.Equal(t, int64(1), dead.Version, "a delete is versioned like any other mutation")
	assert.Equal(t, models.EntityStatusPending, dead.Status)

	// The row survives as a tombstone.
	got, err := s.Get("alert", "alert-1")
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	assert.Empty(t, s.ListByType("alert", false))
	assert.Len(t, s.ListByType("alert", true), 1)
}

func TestEntityStore_Acknowledge_NeverLowersVersion(t *testing.T) {
	s, _, clock := newTestEntityStore(t)

	_, err := s.Upsert("alert", "alert-1", map[string]any{"severity": "high"})
	require.NoError(t, err)
	_, err = s.Upsert("alert", "alert-1", map[string]any{"severity": "low"})
	require.NoError(t, err)

	// A stale acknowledgement must not move the version backward.
	require.NoError(t, s.Acknowledge("alert", "alert-1", 0, clock.Now()))

	got, err := s.Get("alert", "alert-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, models.EntityStatusSynced, got.Status)

	require.NoError(t, s.Acknowledge("alert", "alert-1", 5, clock.Now()))
	got, err = s.Get("alert", "alert-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Version)
}

func TestEntityStore_ApplyRemote(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		prepare        func(t *testing.T, s *EntityStore)
		delta          models.RemoteDelta
		wantApplied    bool
		wantConflicted bool
	}{
		{
			name: "new entity is installed",
			delta: models.RemoteDelta{
				EntityType: "alert", EntityID: "alert-1",
				Payload: map[string]any{"severity": "high"}, Version: 3, ModifiedAt: now,
			},
			wantApplied: true,
		},
		{
			name: "stale delta is skipped",
			prepare: func(t *testing.T, s *EntityStore) {
				_, _, err := s.ApplyRemote(models.RemoteDelta{
					EntityType: "alert", EntityID: "alert-1",
					Payload: map[string]any{"severity": "high"}, Version: 5, ModifiedAt: now,
				})
				require.NoError(t, err)
			},
			delta: models.RemoteDelta{
				EntityType: "alert", EntityID: "alert-1",
				Payload: map[string]any{"severity": "low"}, Version: 4, ModifiedAt: now,
			},
			wantApplied: false,
		},
		{
			name: "pending local state with different content conflicts",
			prepare: func(t *testing.T, s *EntityStore) {
				_, err := s.Upsert("alert", "alert-1", map[string]any{"severity": "high"})
				require.NoError(t, err)
			},
			delta: models.RemoteDelta{
				EntityType: "alert", EntityID: "alert-1",
				Payload: map[string]any{"severity": "low"}, Version: 7, ModifiedAt: now,
			},
			wantApplied:    false,
			wantConflicted: true,
		},
		{
			name: "pending local state with identical content does not conflict",
			prepare: func(t *testing.T, s *EntityStore) {
				_, err := s.Upsert("alert", "alert-1", map[string]any{"severity": "high"})
				require.NoError(t, err)
			},
			delta: models.RemoteDelta{
				EntityType: "alert", EntityID: "alert-1",
				Payload: map[string]any{"severity": "high"}, Version: 7, ModifiedAt: now,
			},
			wantApplied: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestEntityStore(t)
			if tt.prepare != nil {
				tt.prepare(t, s)
			}

			applied, conflicted, err := s.ApplyRemote(tt.delta)
			require.NoError(t, err)
			assert.Equal(t, tt.wantApplied, applied)
			assert.Equal(t, tt.wantConflicted, conflicted != nil)

			if tt.wantApplied {
				got, err := s.Get(tt.delta.EntityType, tt.delta.EntityID)
				require.NoError(t, err)
				assert.Equal(t, tt.delta.Version, got.Version)
				assert.Equal(t, models.EntityStatusSynced, got.Status)
			}
		})
	}
}

func TestEntityStore_ApplyResolution_RejectsConcurrentAdvance(t *testing.T) {
	s, _, clock := newTestEntityStore(t)

	_, err := s.Upsert("alert", "alert-1", map[string]any{"severity": "high"})
	require.NoError(t, err)

	// Another writer advanced the entity after the caller observed version 0.
	_, err = s.Upsert("alert", "alert-1", map[string]any{"severity": "low"})
	require.NoError(t, err)

	_, err = s.ApplyResolution("alert", "alert-1", map[string]any{"severity": "low"}, 0, 4, clock.Now(), false)
	assert.ErrorIs(t, err, ErrVersionConflict)

	resolved, err := s.ApplyResolution("alert", "alert-1", map[string]any{"severity": "low"}, 1, 4, clock.Now(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), resolved.Version)
	assert.Equal(t, models.EntityStatusSynced, resolved.Status)

	pending, err := s.Upsert("alert", "alert-1", map[string]any{"severity": "medium"})
	require.NoError(t, err)
	resolved, err = s.ApplyResolution("alert", "alert-1", map[string]any{"severity": "medium"}, pending.Version, 6, clock.Now(), true)
	require.NoError(t, err)
	assert.Equal(t, models.EntityStatusPending, resolved.Status, "a resolution that still needs pushing stays pending")
}

func TestEntityStore_SurvivesReload(t *testing.T) {
	s, kv, clock := newTestEntityStore(t)

	_, err := s.Upsert("shelter", "shelter-1", map[string]any{"capacity": 120})
	require.NoError(t, err)
	_, err = s.Upsert("shelter", "shelter-1", map[string]any{"capacity": 90})
	require.NoError(t, err)

	reloaded, err := NewEntityStore(kv, clock)
	require.NoError(t, err)

	got, err := reloaded.Get("shelter", "shelter-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, map[string]any{"capacity": float64(90)}, got.Payload, "payloads round-trip through JSON")
}

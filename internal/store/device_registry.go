// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

// ErrSyncInProgress is returned by BeginSync when the device is already
// running a session and the caller did not force takeover.
var ErrSyncInProgress = errors.New("sync already in progress for device")

// DeviceRegistry tracks per-device connectivity, pending-operation counts,
// and storage accounting. Records are never deleted; decommissioned devices
// are archived instead to preserve audit continuity.
type DeviceRegistry struct {
	kv    KV
	clock utils.Clock

	mu      sync.Mutex
	devices map[string]models.DeviceSyncState
}

// NewDeviceRegistry constructs a DeviceRegistry and loads previously
// persisted device records from kv. A device flagged mid-session at crash
// time has its SyncInProgress cleared on load.
func NewDeviceRegistry(kv KV, clock utils.Clock) (*DeviceRegistry, error) {
	r := &DeviceRegistry{
		kv:      kv,
		clock:   clock,
		devices: make(map[string]models.DeviceSyncState),
	}

	err := kv.ForEach(bucketDevices, func(_ string, value []byte) error {
		var state models.DeviceSyncState
		if err := json.Unmarshal(value, &state); err != nil {
			return fmt.Errorf("%w: %w", ErrDecodingRecord, err)
		}
		state.SyncInProgress = false
		r.devices[state.DeviceID] = state
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load devices: %w", err)
	}

	return r, nil
}

// Register creates the sync state for a new device, or updates the
// registration attributes of an already-known device fingerprint without
// duplicating its record.
func (r *DeviceRegistry) Register(device models.Device) (models.DeviceSyncState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()

	state, exists := r.devices[device.DeviceID]
	if !exists {
		state = models.DeviceSyncState{
			Device:         device,
			EntityVersions: make(map[string]int64),
			EntityCounts:   make(map[string]int),
			RegisteredAt:   now,
		}
	} else {
		state.Device = device
		state.Archived = false
	}
	state.UpdatedAt = now

	if err := r.persistLocked(state); err != nil {
		return models.DeviceSyncState{}, err
	}
	r.devices[device.DeviceID] = state

	return state, nil
}

// Get returns the device's sync state or ErrDeviceNotFound.
func (r *DeviceRegistry) Get(deviceID string) (models.DeviceSyncState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.devices[deviceID]
	if !exists {
		return models.DeviceSyncState{}, ErrDeviceNotFound
	}

	return state, nil
}

// List returns every registered device, archived ones included, ordered by
// device id.
func (r *DeviceRegistry) List() []models.DeviceSyncState {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.DeviceSyncState, 0, len(r.devices))
	for _, state := range r.devices {
		out = append(out, state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })

	return out
}

// SetOnline records an advisory connectivity transition. It gates future
// sync attempts but does not cancel an in-flight session.
func (r *DeviceRegistry) SetOnline(deviceID string, online bool) error {
	return r.update(deviceID, func(state *models.DeviceSyncState) error {
		state.IsOnline = online
		return nil
	})
}

// Archive flags a decommissioned device while keeping its record.
func (r *DeviceRegistry) Archive(deviceID string) error {
	return r.update(deviceID, func(state *models.DeviceSyncState) error {
		state.Archived = true
		return nil
	})
}

// BeginSync atomically claims the device's session slot. It fails with
// ErrSyncInProgress when a session is already running, unless force is set,
// in which case the slot is taken over (the orchestrator aborts the running
// session before calling this with force).
func (r *DeviceRegistry) BeginSync(deviceID string, force bool) error {
	return r.update(deviceID, func(state *models.DeviceSyncState) error {
		if state.SyncInProgress && !force {
			return fmt.Errorf("device %s: %w", deviceID, ErrSyncInProgress)
		}
		state.SyncInProgress = true
		return nil
	})
}

// FinishSync releases the session slot and records the session outcome:
// lastSyncAt, lastSyncStatus (worst outcome of the session), and the
// recomputed pending-operation count.
func (r *DeviceRegistry) FinishSync(deviceID string, at time.Time, outcome models.SyncOutcome, pendingOps int) error {
	return r.update(deviceID, func(state *models.DeviceSyncState) error {
		state.SyncInProgress = false
		state.LastSyncAt = &at
		state.LastSyncStatus = outcome
		state.PendingOperations = pendingOps
		return nil
	})
}

// RecordChange accounts for one tracked local change: pending operations,
// per-type entity counts, and storage usage.
func (r *DeviceRegistry) RecordChange(deviceID, entityType string, payloadBytes int64) error {
	return r.update(deviceID, func(state *models.DeviceSyncState) error {
		state.PendingOperations++
		if state.EntityCounts == nil {
			state.EntityCounts = make(map[string]int)
		}
		state.EntityCounts[entityType]++
		state.StorageUsedBytes += payloadBytes
		return nil
	})
}

// SetPullVersion advances the device's per-type server version watermark.
// The watermark never moves backward.
func (r *DeviceRegistry) SetPullVersion(deviceID, entityType string, version int64) error {
	return r.update(deviceID, func(state *models.DeviceSyncState) error {
		if state.EntityVersions == nil {
			state.EntityVersions = make(map[string]int64)
		}
		if version > state.EntityVersions[entityType] {
			state.EntityVersions[entityType] = version
		}
		return nil
	})
}

func (r *DeviceRegistry) update(deviceID string, mutate func(*models.DeviceSyncState) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.devices[deviceID]
	if !exists {
		return fmt.Errorf("device %s: %w", deviceID, ErrDeviceNotFound)
	}

	if err := mutate(&state); err != nil {
		return err
	}
	state.UpdatedAt = r.clock.Now()

	if err := r.persistLocked(state); err != nil {
		return err
	}
	r.devices[deviceID] = state

	return nil
}

func (r *DeviceRegistry) persistLocked(state models.DeviceSyncState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode device %s: %w", state.DeviceID, err)
	}

	if err := r.kv.Put(bucketDevices, state.DeviceID, data); err != nil {
		return fmt.Errorf("persist device %s: %w", state.DeviceID, err)
	}

	return nil
}

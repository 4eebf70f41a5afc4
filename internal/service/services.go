// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

// Package service hosts the sync engine: an explicitly constructed service
// object owning its state (entity store, outbox, device registry, event
// bus), passed by handle to callers. There is no hidden global.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alertaid/syncengine/internal/adapter"
	"github.com/alertaid/syncengine/internal/config"
	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

const packageCounterKey = "offline_package_version"

// DefaultEntityTypes are the synchronizable entity types of the alert
// platform, seeded with a config at engine construction when no config
// exists yet.
var DefaultEntityTypes = []string{"alert", "shelter", "weather_report", "risk_prediction"}

// sessionHandle tracks one in-flight sync session so a forced StartSync can
// abort it and wait for it to wind down.
type sessionHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Engine is the data synchronization engine facade. It owns every stateful
// component and exposes the boundary operations consumed by the HTTP API,
// the background workers, and other services.
//
// Independent devices may sync concurrently: the entity store is the only
// structure shared between session contexts and it serializes mutations
// through its optimistic version check.
type Engine struct {
	cfg   config.Engine
	log   *logger.Logger
	clock utils.Clock
	ids   *utils.UUIDGenerator

	entities *store.EntityStore
	outbox   *store.Outbox
	devices  *store.DeviceRegistry
	events   *store.EventLog
	pkgSeq   *store.Counter

	bus      *EventBus
	peer     adapter.RemotePeer
	resolver ConflictResolver

	mu       sync.Mutex
	configs  map[string]models.SyncConfig
	running  map[string]*sessionHandle
	sessions []models.SyncSession
}

// NewEngine wires an Engine on top of kv-backed stores, the given remote
// peer, and clock. Entity types from DefaultEntityTypes receive a default
// bidirectional config unless one is registered later via UpdateSyncConfig.
func NewEngine(cfg config.Engine, kv store.KV, peer adapter.RemotePeer, clock utils.Clock, log *logger.Logger) (*Engine, error) {
	entities, err := store.NewEntityStore(kv, clock)
	if err != nil {
		return nil, fmt.Errorf("create entity store: %w", err)
	}

	outbox, err := store.NewOutbox(kv, clock)
	if err != nil {
		return nil, fmt.Errorf("create outbox: %w", err)
	}

	devices, err := store.NewDeviceRegistry(kv, clock)
	if err != nil {
		return nil, fmt.Errorf("create device registry: %w", err)
	}

	pkgSeq, err := store.NewCounter(kv, packageCounterKey)
	if err != nil {
		return nil, fmt.Errorf("create package counter: %w", err)
	}

	e := &Engine{
		cfg:      cfg,
		log:      log,
		clock:    clock,
		ids:      utils.NewUUIDGenerator(),
		entities: entities,
		outbox:   outbox,
		devices:  devices,
		events:   store.NewEventLog(cfg.EventBufferSize),
		pkgSeq:   pkgSeq,
		bus:      NewEventBus(cfg.SubscriberBufferSize, log),
		peer:     peer,
		resolver: NewConflictResolver(clock),
		configs:  make(map[string]models.SyncConfig),
		running:  make(map[string]*sessionHandle),
	}

	for _, entityType := range DefaultEntityTypes {
		e.configs[entityType] = e.defaultSyncConfig(entityType)
	}

	return e, nil
}

// Close shuts down the event bus. In-flight sessions are left to finish;
// callers stop the workers first.
func (e *Engine) Close() {
	e.bus.Close()
}

func (e *Engine) defaultSyncConfig(entityType string) models.SyncConfig {
	return models.SyncConfig{
		EntityType:       entityType,
		Enabled:          true,
		Direction:        models.DirectionBidirectional,
		ConflictStrategy: models.StrategyLatestWins,
		BatchSize:        e.cfg.DefaultBatchSize,
		MaxRetries:       e.cfg.DefaultMaxRetries,
		AllowOffline:     true,
		UpdatedAt:        e.clock.Now(),
	}
}

// GetSyncConfig returns the active config for the entity type.
func (e *Engine) GetSyncConfig(entityType string) (models.SyncConfig, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg, ok := e.configs[entityType]
	if !ok {
		return models.SyncConfig{}, fmt.Errorf("entity type %q: %w", entityType, ErrUnknownEntityType)
	}

	return cfg, nil
}

// UpdateSyncConfig applies a partial update to the entity type's config and
// returns the result. Updating an unknown entity type registers it, so new
// types can be introduced at runtime; each type always has exactly one
// active config.
func (e *Engine) UpdateSyncConfig(entityType string, patch models.SyncConfigPatch) (models.SyncConfig, error) {
	if patch.Direction != nil {
		switch *patch.Direction {
		case models.DirectionPush, models.DirectionPull, models.DirectionBidirectional:
		default:
			return models.SyncConfig{}, fmt.Errorf("direction %q: %w", *patch.Direction, ErrInvalidDirection)
		}
	}
	if patch.ConflictStrategy != nil {
		switch *patch.ConflictStrategy {
		case models.StrategyClientWins, models.StrategyServerWins, models.StrategyLatestWins,
			models.StrategyMerge, models.StrategyManual:
		default:
			return models.SyncConfig{}, fmt.Errorf("strategy %q: %w", *patch.ConflictStrategy, ErrInvalidStrategy)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cfg, ok := e.configs[entityType]
	if !ok {
		cfg = e.defaultSyncConfig(entityType)
	}

	if patch.Enabled != nil {
		cfg.Enabled = *patch.Enabled
	}
	if patch.Direction != nil {
		cfg.Direction = *patch.Direction
	}
	if patch.ConflictStrategy != nil {
		cfg.ConflictStrategy = *patch.ConflictStrategy
	}
	if patch.BatchSize != nil && *patch.BatchSize > 0 {
		cfg.BatchSize = *patch.BatchSize
	}
	if patch.MaxRetries != nil && *patch.MaxRetries >= 0 {
		cfg.MaxRetries = *patch.MaxRetries
	}
	if patch.AllowOffline != nil {
		cfg.AllowOffline = *patch.AllowOffline
	}
	cfg.UpdatedAt = e.clock.Now()

	e.configs[entityType] = cfg

	return cfg, nil
}

// configsSnapshot returns a copy of the config table for lock-free
// iteration during a session.
func (e *Engine) configsSnapshot() []models.SyncConfig {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]models.SyncConfig, 0, len(e.configs))
	for _, cfg := range e.configs {
		out = append(out, cfg)
	}

	return out
}

// RegisterDevice creates or updates the sync state of a device.
func (e *Engine) RegisterDevice(device models.Device) (models.DeviceSyncState, error) {
	state, err := e.devices.Register(device)
	if err != nil {
		return models.DeviceSyncState{}, err
	}

	e.log.Info().
		Str("device_id", device.DeviceID).
		Str("user_id", device.UserID).
		Str("platform", device.Platform).
		Msg("device registered")

	return state, nil
}

// UpdateDeviceOnlineStatus records an advisory connectivity transition.
func (e *Engine) UpdateDeviceOnlineStatus(deviceID string, online bool) error {
	return e.devices.SetOnline(deviceID, online)
}

// ArchiveDevice flags a decommissioned device. The record is kept for audit
// continuity.
func (e *Engine) ArchiveDevice(deviceID string) error {
	return e.devices.Archive(deviceID)
}

// GetDevice returns the sync state of a device.
func (e *Engine) GetDevice(deviceID string) (models.DeviceSyncState, error) {
	return e.devices.Get(deviceID)
}

// ListDevices returns every registered device.
func (e *Engine) ListDevices() []models.DeviceSyncState {
	return e.devices.List()
}

// GetPendingOperations returns pending operations in FIFO order, optionally
// filtered by device and entity type. Empty arguments match everything.
func (e *Engine) GetPendingOperations(deviceID, entityType string) []models.Operation {
	if entityType == "" {
		return e.outbox.DequeuePending(deviceID)
	}
	return e.outbox.DequeuePending(deviceID, entityType)
}

// GetConflicts returns conflicted operations awaiting resolution,
// optionally filtered by device.
func (e *Engine) GetConflicts(deviceID string) []models.Operation {
	return e.outbox.Conflicts(deviceID)
}

// GetFailedOperations returns the manual-intervention queue, optionally
// filtered by device.
func (e *Engine) GetFailedOperations(deviceID string) []models.Operation {
	return e.outbox.Failed(deviceID)
}

// GetChangeEvents returns up to limit retained change events matching
// filter, most recent first.
func (e *Engine) GetChangeEvents(filter models.EventFilter, limit int) []models.ChangeEvent {
	return e.events.List(filter, limit)
}

// Subscribe registers a live change-event subscriber. Delivery is
// at-most-once; the returned function unsubscribes and closes the channel.
func (e *Engine) Subscribe(filter models.EventFilter) (<-chan models.ChangeEvent, func()) {
	return e.bus.Subscribe(filter)
}

func (e *Engine) recordSession(session models.SyncSession) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sessions = append(e.sessions, session)
	if max := e.cfg.SessionHistorySize; max > 0 && len(e.sessions) > max {
		e.sessions = e.sessions[len(e.sessions)-max:]
	}
}

func (e *Engine) sessionsSince(start time.Time) []models.SyncSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []models.SyncSession
	for _, s := range e.sessions {
		if !s.StartedAt.Before(start) {
			out = append(out, s)
		}
	}

	return out
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package adapter

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

// MemoryPeer is a deterministic in-memory [RemotePeer]. It simulates the
// server of record: it enforces the optimistic version check, deduplicates
// operation IDs for idempotent redelivery, and can be scripted to fail with
// transient errors. Time comes from an injectable clock so tests never
// sleep.
type MemoryPeer struct {
	clock utils.Clock

	mu            sync.Mutex
	entities      map[models.EntityKey]models.RemoteDelta
	appliedOps    map[string]models.PushAck
	failuresLeft  int
	pushedOrder   []string
	pushBlockedCh chan struct{}
}

// NewMemoryPeer constructs an empty MemoryPeer driven by clock.
func NewMemoryPeer(clock utils.Clock) *MemoryPeer {
	return &MemoryPeer{
		clock:      clock,
		entities:   make(map[models.EntityKey]models.RemoteDelta),
		appliedOps: make(map[string]models.PushAck),
	}
}

// SeedEntity installs server-side state without going through Push, used to
// simulate writes made by other devices.
func (p *MemoryPeer) SeedEntity(delta models.RemoteDelta) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entities[models.EntityKey{EntityType: delta.EntityType, EntityID: delta.EntityID}] = delta
}

// FailNext makes the next n Push calls fail with ErrTemporarilyUnavailable.
func (p *MemoryPeer) FailNext(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failuresLeft = n
}

// BlockPushes makes Push calls wait until the returned release function is
// called, letting tests hold a session open deterministically.
func (p *MemoryPeer) BlockPushes() (release func()) {
	ch := make(chan struct{})
	p.mu.Lock()
	p.pushBlockedCh = ch
	p.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// PushedOrder returns the operation IDs accepted so far, in arrival order.
func (p *MemoryPeer) PushedOrder() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.pushedOrder))
	copy(out, p.pushedOrder)
	return out
}

// Push implements [RemotePeer].
func (p *MemoryPeer) Push(ctx context.Context, op models.Operation) (models.PushAck, error) {
	p.mu.Lock()
	blocked := p.pushBlockedCh
	p.mu.Unlock()

	if blocked != nil {
		select {
		case <-blocked:
		case <-ctx.Done():
			return models.PushAck{}, fmt.Errorf("push %s: %w: %w", op.ID, ErrTemporarilyUnavailable, ctx.Err())
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return models.PushAck{}, fmt.Errorf("push %s: %w: %w", op.ID, ErrTemporarilyUnavailable, err)
	}

	if p.failuresLeft > 0 {
		p.failuresLeft--
		return models.PushAck{}, fmt.Errorf("push %s: %w: injected failure", op.ID, ErrTemporarilyUnavailable)
	}

	if ack, seen := p.appliedOps[op.ID]; seen {
		ack.AlreadyApplied = true
		return ack, nil
	}

	key := models.EntityKey{EntityType: op.EntityType, EntityID: op.EntityID}
	current, exists := p.entities[key]

	// Optimistic check: the operation must produce the next version.
	expected := int64(0)
	if exists {
		expected = current.Version + 1
	}
	if op.Version != expected {
		return models.PushAck{}, fmt.Errorf("push %s: have v%d, op expects to produce v%d: %w",
			op.ID, current.Version, op.Version, ErrVersionConflict)
	}

	now := p.clock.Now()
	p.entities[key] = models.RemoteDelta{
		EntityType: op.EntityType,
		EntityID:   op.EntityID,
		Payload:    op.Payload,
		Version:    op.Version,
		Deleted:    op.Type == models.OperationDelete,
		ModifiedAt: now,
	}

	ack := models.PushAck{NewVersion: op.Version, ModifiedAt: now}
	p.appliedOps[op.ID] = ack
	p.pushedOrder = append(p.pushedOrder, op.ID)

	return ack, nil
}

// Pull implements [RemotePeer].
func (p *MemoryPeer) Pull(ctx context.Context, entityType string, sinceVersion int64, limit int) ([]models.RemoteDelta, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pull %s: %w: %w", entityType, ErrTemporarilyUnavailable, err)
	}

	var out []models.RemoteDelta
	for _, delta := range p.entities {
		if delta.EntityType == entityType && delta.Version > sinceVersion {
			out = append(out, delta)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version < out[j].Version
		}
		return out[i].EntityID < out[j].EntityID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// Fetch implements [RemotePeer].
func (p *MemoryPeer) Fetch(ctx context.Context, entityType, entityID string) (models.RemoteDelta, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return models.RemoteDelta{}, fmt.Errorf("fetch %s/%s: %w: %w", entityType, entityID, ErrTemporarilyUnavailable, err)
	}

	delta, exists := p.entities[models.EntityKey{EntityType: entityType, EntityID: entityID}]
	if !exists {
		return models.RemoteDelta{}, fmt.Errorf("fetch %s/%s: %w", entityType, entityID, ErrRemoteNotFound)
	}

	return delta, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

const metaKeyNextSeq = "outbox_next_seq"

// Outbox is the append-only operation log of local mutations awaiting
// delivery. Ordering is strict creation-time ascending (FIFO) within a
// device, which guarantees causal delivery order for a single device even
// though cross-device order is unspecified.
//
// Operations are retained after completion or permanent failure so that
// redelivery stays idempotent and analytics can account for them.
type Outbox struct {
	kv    KV
	clock utils.Clock

	mu      sync.Mutex
	nextSeq int64
	ops     map[string]models.Operation
}

// NewOutbox constructs an Outbox and loads any previously persisted
// operations from kv. Operations interrupted mid-delivery (status
// processing) are returned to pending so the next session retries them.
func NewOutbox(kv KV, clock utils.Clock) (*Outbox, error) {
	o := &Outbox{
		kv:      kv,
		clock:   clock,
		nextSeq: 1,
		ops:     make(map[string]models.Operation),
	}

	if raw, found, err := kv.Get(bucketMeta, metaKeyNextSeq); err != nil {
		return nil, fmt.Errorf("load outbox sequence: %w", err)
	} else if found {
		seq, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: outbox sequence: %w", ErrDecodingRecord, err)
		}
		o.nextSeq = seq
	}

	err := kv.ForEach(bucketOperations, func(_ string, value []byte) error {
		var op models.Operation
		if err := json.Unmarshal(value, &op); err != nil {
			return fmt.Errorf("%w: %w", ErrDecodingRecord, err)
		}
		if op.Status == models.OperationStatusProcessing {
			op.Status = models.OperationStatusPending
		}
		o.ops[op.ID] = op
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load operations: %w", err)
	}

	return o, nil
}

// Enqueue appends op to the log: a sequence number is assigned, status is
// forced to pending, and timestamps are stamped.
func (o *Outbox) Enqueue(op models.Operation) (models.Operation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.clock.Now()
	op.Seq = o.nextSeq
	op.Status = models.OperationStatusPending
	op.CreatedAt = now
	op.UpdatedAt = now

	if err := o.persistLocked(op); err != nil {
		return models.Operation{}, err
	}
	if err := o.kv.Put(bucketMeta, metaKeyNextSeq, []byte(strconv.FormatInt(o.nextSeq+1, 10))); err != nil {
		return models.Operation{}, fmt.Errorf("persist outbox sequence: %w", err)
	}

	o.nextSeq++
	o.ops[op.ID] = op

	return op, nil
}

// Get returns the operation or ErrOperationNotFound.
func (o *Outbox) Get(operationID string) (models.Operation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	op, exists := o.ops[operationID]
	if !exists {
		return models.Operation{}, ErrOperationNotFound
	}

	return op, nil
}

// DequeuePending returns the device's pending operations in FIFO order,
// optionally filtered to the given entity types. The operations are not
// state-transitioned; the caller marks them processing one at a time.
func (o *Outbox) DequeuePending(deviceID string, entityTypes ...string) []models.Operation {
	return o.selectOps(func(op models.Operation) bool {
		if op.Status != models.OperationStatusPending {
			return false
		}
		if deviceID != "" && op.DeviceID != deviceID {
			return false
		}
		return matchesTypes(op.EntityType, entityTypes)
	})
}

// Conflicts returns conflicted operations, optionally filtered by device,
// in FIFO order.
func (o *Outbox) Conflicts(deviceID string) []models.Operation {
	return o.selectOps(func(op models.Operation) bool {
		return op.Status == models.OperationStatusConflict &&
			(deviceID == "" || op.DeviceID == deviceID)
	})
}

// Failed returns the manual-intervention queue: operations that exhausted
// their retry budget, optionally filtered by device, in FIFO order.
func (o *Outbox) Failed(deviceID string) []models.Operation {
	return o.selectOps(func(op models.Operation) bool {
		return op.Status == models.OperationStatusFailed &&
			(deviceID == "" || op.DeviceID == deviceID)
	})
}

// UndeliveredForEntity returns the earliest operation targeting the entity
// that has not yet reached a terminal state, if any. Used when a pulled
// remote delta collides with unsynced local state and the conflict must be
// attributed to the originating operation.
func (o *Outbox) UndeliveredForEntity(entityType, entityID string) (models.Operation, bool) {
	ops := o.selectOps(func(op models.Operation) bool {
		if op.EntityType != entityType || op.EntityID != entityID {
			return false
		}
		return op.Status == models.OperationStatusPending ||
			op.Status == models.OperationStatusProcessing ||
			op.Status == models.OperationStatusConflict
	})
	if len(ops) == 0 {
		return models.Operation{}, false
	}
	return ops[0], true
}

// PendingCount returns the number of pending operations for the device.
func (o *Outbox) PendingCount(deviceID string) int {
	return len(o.DequeuePending(deviceID))
}

// Snapshot returns a copy of every retained operation, for analytics.
func (o *Outbox) Snapshot() []models.Operation {
	return o.selectOps(func(models.Operation) bool { return true })
}

// MarkProcessing transitions a pending operation to processing.
func (o *Outbox) MarkProcessing(operationID string) error {
	return o.transition(operationID, func(op *models.Operation) error {
		op.Status = models.OperationStatusProcessing
		return nil
	})
}

// MarkCompleted finalizes a delivered operation.
func (o *Outbox) MarkCompleted(operationID string) error {
	return o.transition(operationID, func(op *models.Operation) error {
		now := o.clock.Now()
		op.Status = models.OperationStatusCompleted
		op.CompletedAt = &now
		op.LastError = ""
		return nil
	})
}

// MarkFailed fails the operation permanently, bypassing the retry budget.
// Used for non-transient delivery errors where retrying cannot help.
func (o *Outbox) MarkFailed(operationID, cause string) error {
	return o.transition(operationID, func(op *models.Operation) error {
		op.Status = models.OperationStatusFailed
		op.LastError = cause
		return nil
	})
}

// RetryOrFail applies the transient-failure policy: the retry counter is
// incremented and the operation returns to pending while budget remains;
// once retryCount reaches maxRetries the operation is failed permanently and
// surfaces in the manual-intervention queue. Returns true when the
// operation was failed.
func (o *Outbox) RetryOrFail(operationID, cause string) (failed bool, err error) {
	err = o.transition(operationID, func(op *models.Operation) error {
		op.RetryCount++
		op.LastError = cause
		if op.RetryCount < op.MaxRetries {
			op.Status = models.OperationStatusPending
		} else {
			op.Status = models.OperationStatusFailed
			failed = true
		}
		return nil
	})
	return failed, err
}

// MarkConflict parks the operation in the conflict state with its
// resolution record attached. Conflicted operations are never silently
// dropped; they stay visible until resolved.
func (o *Outbox) MarkConflict(operationID string, resolution models.ConflictResolution) error {
	return o.transition(operationID, func(op *models.Operation) error {
		op.Status = models.OperationStatusConflict
		op.Resolution = &resolution
		return nil
	})
}

// RecordResolution attaches a resolution outcome to the operation without
// changing its status. Used when a conflict resolves in the server's favour
// and the operation completes without a re-push, so the outcome still shows
// up in conflict accounting.
func (o *Outbox) RecordResolution(operationID string, resolution models.ConflictResolution) error {
	return o.transition(operationID, func(op *models.Operation) error {
		op.Resolution = &resolution
		return nil
	})
}

// Resubmit rewrites a conflicted or pending operation with the winning
// payload and target version and returns it to pending, preserving its
// original sequence position.
func (o *Outbox) Resubmit(operationID string, payload map[string]any, version int64, resolution *models.ConflictResolution) (models.Operation, error) {
	var out models.Operation
	err := o.transition(operationID, func(op *models.Operation) error {
		op.Payload = clonePayload(payload)
		op.Version = version
		op.Status = models.OperationStatusPending
		op.RetryCount = 0
		op.LastError = ""
		op.Resolution = resolution
		out = *op
		return nil
	})
	return out, err
}

func (o *Outbox) transition(operationID string, mutate func(*models.Operation) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	op, exists := o.ops[operationID]
	if !exists {
		return fmt.Errorf("operation %s: %w", operationID, ErrOperationNotFound)
	}

	if err := mutate(&op); err != nil {
		return err
	}
	op.UpdatedAt = o.clock.Now()

	if err := o.persistLocked(op); err != nil {
		return err
	}
	o.ops[op.ID] = op

	return nil
}

func (o *Outbox) selectOps(keep func(models.Operation) bool) []models.Operation {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []models.Operation
	for _, op := range o.ops {
		if keep(op) {
			out = append(out, op)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })

	return out
}

func (o *Outbox) persistLocked(op models.Operation) error {
	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("encode operation %s: %w", op.ID, err)
	}

	if err := o.kv.Put(bucketOperations, op.ID, data); err != nil {
		return fmt.Errorf("persist operation %s: %w", op.ID, err)
	}

	return nil
}

func matchesTypes(entityType string, entityTypes []string) bool {
	if len(entityTypes) == 0 {
		return true
	}
	for _, t := range entityTypes {
		if t == entityType {
			return true
		}
	}
	return false
}

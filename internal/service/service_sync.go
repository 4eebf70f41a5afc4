// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alertaid/syncengine/internal/adapter"
	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

// StartSync drives one push/pull session for the device and returns the
// finished session record. It fails fast with store.ErrSyncInProgress when
// a session is already running for the device, unless opts.Force is set, in
// which case the running session is aborted (it winds down as paused) before
// the new one starts.
//
// Transient delivery failures are absorbed by the outbox retry policy and
// never propagate to the caller: StartSync always returns a
// completed-or-errored session once it has begun. Cancelling ctx aborts the
// session between operations; the in-flight call finishes and the session is
// marked paused so a subsequent StartSync resumes from the first
// still-pending operation.
func (e *Engine) StartSync(ctx context.Context, deviceID string, opts models.SyncOptions) (models.SyncSession, error) {
	if _, err := e.devices.Get(deviceID); err != nil {
		return models.SyncSession{}, fmt.Errorf("start sync: %w", err)
	}

	e.mu.Lock()
	// Re-check after every wait: a concurrent forced caller may have
	// installed its own session while the lock was released.
	for prev := e.running[deviceID]; prev != nil; prev = e.running[deviceID] {
		if !opts.Force {
			e.mu.Unlock()
			return models.SyncSession{}, fmt.Errorf("device %s: %w", deviceID, store.ErrSyncInProgress)
		}
		e.mu.Unlock()
		prev.cancel()
		<-prev.done
		e.mu.Lock()
	}

	if err := e.devices.BeginSync(deviceID, opts.Force); err != nil {
		e.mu.Unlock()
		return models.SyncSession{}, fmt.Errorf("start sync: %w", err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	handle := &sessionHandle{cancel: cancel, done: make(chan struct{})}
	e.running[deviceID] = handle
	e.mu.Unlock()

	session := e.runSession(sessionCtx, deviceID, opts)

	e.mu.Lock()
	if e.running[deviceID] == handle {
		delete(e.running, deviceID)
	}
	e.mu.Unlock()

	e.recordSession(session)
	cancel()
	close(handle.done)

	return session, nil
}

// AbortSync aborts the device's in-flight session, if any. The session
// finishes its current operation and winds down as paused.
func (e *Engine) AbortSync(deviceID string) bool {
	e.mu.Lock()
	handle := e.running[deviceID]
	e.mu.Unlock()

	if handle == nil {
		return false
	}
	handle.cancel()

	return true
}

func (e *Engine) runSession(ctx context.Context, deviceID string, opts models.SyncOptions) models.SyncSession {
	session := models.SyncSession{
		ID:        e.ids.Generate(),
		DeviceID:  deviceID,
		Status:    models.SessionRunning,
		StartedAt: e.clock.Now(),
	}

	log := &logger.Logger{Logger: e.log.With().
		Str("session_id", session.ID).
		Str("device_id", deviceID).
		Logger()}
	log.Info().Msg("sync session started")

	aborted := false
	if opts.Direction != models.DirectionPull {
		aborted = e.pushPhase(ctx, &session, deviceID, opts)
	}
	if !aborted && opts.Direction != models.DirectionPush {
		aborted = e.pullPhase(ctx, &session, deviceID, opts)
	}

	end := e.clock.Now()
	session.CompletedAt = &end
	switch {
	case aborted:
		session.Status = models.SessionPaused
	case len(session.Errors) > 0:
		session.Status = models.SessionError
	default:
		session.Status = models.SessionCompleted
	}

	outcome := models.SyncOutcomeIdle
	if len(session.Errors) > 0 || session.ConflictsDeferred > 0 {
		outcome = models.SyncOutcomeError
	}
	if err := e.devices.FinishSync(deviceID, end, outcome, e.outbox.PendingCount(deviceID)); err != nil {
		log.Error().Err(err).Msg("failed to finalize device sync state")
	}

	log.Info().
		Str("status", string(session.Status)).
		Int("pushed", session.OperationsPushed).
		Int("pulled", session.DeltasPulled).
		Int("conflicts_resolved", session.ConflictsResolved).
		Int("conflicts_deferred", session.ConflictsDeferred).
		Int("errors", len(session.Errors)).
		Msg("sync session finished")

	return session
}

// pushPhase drains the device's outbox in FIFO order. Returns true when the
// session was aborted mid-batch.
func (e *Engine) pushPhase(ctx context.Context, session *models.SyncSession, deviceID string, opts models.SyncOptions) bool {
	ops := e.outbox.DequeuePending(deviceID, opts.EntityTypes...)

	for _, op := range ops {
		// Abort stops dequeuing new operations; the in-flight one has
		// already finished by the time we observe the signal.
		if ctx.Err() != nil {
			return true
		}

		cfg, err := e.GetSyncConfig(op.EntityType)
		if err != nil || cfg.Direction == models.DirectionPull {
			continue
		}

		if err := e.outbox.MarkProcessing(op.ID); err != nil {
			session.Errors = append(session.Errors, err.Error())
			continue
		}

		ack, err := e.peer.Push(ctx, op)
		switch {
		case err == nil:
			e.completePush(session, op, ack)

		case errors.Is(err, adapter.ErrVersionConflict):
			// Conflicts never block the rest of the batch.
			e.resolvePushConflict(ctx, session, op, cfg)

		default:
			e.failOrRetry(session, op, err)
			if ctx.Err() != nil {
				return true
			}
		}
	}

	return false
}

func (e *Engine) completePush(session *models.SyncSession, op models.Operation, ack models.PushAck) {
	if err := e.outbox.MarkCompleted(op.ID); err != nil {
		session.Errors = append(session.Errors, err.Error())
		return
	}

	if ack.AlreadyApplied {
		// At-least-once redelivery: the peer had applied this operation
		// before; nothing moved, so the entity version stays put.
		e.log.Debug().Str("operation_id", op.ID).Msg("operation already applied on remote")
		return
	}

	if err := e.entities.Acknowledge(op.EntityType, op.EntityID, ack.NewVersion, ack.ModifiedAt); err != nil {
		session.Errors = append(session.Errors, err.Error())
		return
	}
	e.events.MarkPropagated(op.EntityType, op.EntityID, op.Version)

	session.OperationsPushed++
	session.BytesTransferred += payloadBytes(op.Payload)
}

// resolvePushConflict handles a push rejected with a version mismatch: the
// server snapshot is fetched, the entity type's strategy is applied, and the
// winning payload is either re-submitted or the operation is parked for
// manual resolution.
func (e *Engine) resolvePushConflict(ctx context.Context, session *models.SyncSession, op models.Operation, cfg models.SyncConfig) {
	snapshot, err := e.peer.Fetch(ctx, op.EntityType, op.EntityID)
	if err != nil {
		e.failOrRetry(session, op, fmt.Errorf("fetch conflict snapshot: %w", err))
		return
	}

	res := e.resolver.Resolve(op, snapshot, cfg.ConflictStrategy)
	if !res.AutoResolved {
		e.deferConflict(session, op, res)
		return
	}

	local, err := e.entities.Get(op.EntityType, op.EntityID)
	if err != nil {
		session.Errors = append(session.Errors, err.Error())
		return
	}

	if payloadsEqual(res.ResolvedData, snapshot.Payload) {
		// The server side won: discard the local edit and adopt the
		// server state as-is. No re-push is needed.
		_, err = e.entities.ApplyResolution(op.EntityType, op.EntityID, snapshot.Payload,
			local.Version, snapshot.Version, snapshot.ModifiedAt, false)
		if err != nil {
			session.Errors = append(session.Errors, err.Error())
			return
		}
		if err := e.outbox.RecordResolution(op.ID, res); err != nil {
			session.Errors = append(session.Errors, err.Error())
			return
		}
		if err := e.outbox.MarkCompleted(op.ID); err != nil {
			session.Errors = append(session.Errors, err.Error())
			return
		}
		session.ConflictsResolved++
		return
	}

	// The client side contributed: re-submit the winning payload on top of
	// the server version.
	resubmitted, err := e.outbox.Resubmit(op.ID, res.ResolvedData, snapshot.Version+1, &res)
	if err != nil {
		session.Errors = append(session.Errors, err.Error())
		return
	}

	ack, err := e.peer.Push(ctx, resubmitted)
	if err != nil {
		e.failOrRetry(session, resubmitted, fmt.Errorf("re-submit resolved payload: %w", err))
		return
	}

	_, err = e.entities.ApplyResolution(op.EntityType, op.EntityID, res.ResolvedData,
		local.Version, ack.NewVersion, ack.ModifiedAt, false)
	if err != nil {
		session.Errors = append(session.Errors, err.Error())
		return
	}
	if err := e.outbox.MarkCompleted(resubmitted.ID); err != nil {
		session.Errors = append(session.Errors, err.Error())
		return
	}
	e.events.MarkPropagated(op.EntityType, op.EntityID, local.Version)

	session.ConflictsResolved++
	session.OperationsPushed++
	session.BytesTransferred += payloadBytes(res.ResolvedData)
}

func (e *Engine) deferConflict(session *models.SyncSession, op models.Operation, res models.ConflictResolution) {
	if err := e.outbox.MarkConflict(op.ID, res); err != nil {
		session.Errors = append(session.Errors, err.Error())
		return
	}
	if err := e.entities.SetStatus(op.EntityType, op.EntityID, models.EntityStatusConflict); err != nil {
		session.Errors = append(session.Errors, err.Error())
	}
	session.ConflictsDeferred++

	e.log.Info().
		Str("operation_id", op.ID).
		Str("entity", op.EntityType+"/"+op.EntityID).
		Msg("conflict deferred for manual resolution")
}

// failOrRetry applies the transient-failure policy to a delivery error.
// Errors other than adapter.ErrTemporarilyUnavailable exhaust the retry
// budget immediately.
func (e *Engine) failOrRetry(session *models.SyncSession, op models.Operation, cause error) {
	transient := errors.Is(cause, adapter.ErrTemporarilyUnavailable)

	var failed bool
	var err error
	if transient {
		failed, err = e.outbox.RetryOrFail(op.ID, cause.Error())
	} else {
		failed, err = true, e.outbox.MarkFailed(op.ID, cause.Error())
	}
	if err != nil {
		session.Errors = append(session.Errors, err.Error())
		return
	}

	if failed {
		session.Errors = append(session.Errors, fmt.Sprintf("operation %s: %s", op.ID, cause))
		if err := e.entities.SetStatus(op.EntityType, op.EntityID, models.EntityStatusFailed); err != nil {
			session.Errors = append(session.Errors, err.Error())
		}
		return
	}

	e.log.Warn().
		Str("operation_id", op.ID).
		Int("retry_count", op.RetryCount+1).
		Err(cause).
		Msg("transient delivery failure, operation returned to pending")
}

// pullPhase fetches remote deltas for every entity type whose config allows
// pulling, resuming from the device's per-type version watermarks. Returns
// true when the session was aborted mid-batch.
func (e *Engine) pullPhase(ctx context.Context, session *models.SyncSession, deviceID string, opts models.SyncOptions) bool {
	device, err := e.devices.Get(deviceID)
	if err != nil {
		session.Errors = append(session.Errors, err.Error())
		return false
	}

	for _, cfg := range e.configsSnapshot() {
		if ctx.Err() != nil {
			return true
		}
		if !cfg.Enabled || cfg.Direction == models.DirectionPush || !opts.WantsType(cfg.EntityType) {
			continue
		}

		since := device.EntityVersions[cfg.EntityType]
		deltas, err := e.peer.Pull(ctx, cfg.EntityType, since, cfg.BatchSize)
		if err != nil {
			session.Errors = append(session.Errors, fmt.Sprintf("pull %s: %s", cfg.EntityType, err))
			continue
		}

		watermark := since
		for _, delta := range deltas {
			if ctx.Err() != nil {
				return true
			}

			applied, conflicted, err := e.entities.ApplyRemote(delta)
			switch {
			case err != nil:
				session.Errors = append(session.Errors, err.Error())
			case conflicted != nil:
				e.resolvePullConflict(session, deviceID, cfg, delta, *conflicted)
			case applied:
				session.DeltasPulled++
				session.BytesTransferred += payloadBytes(delta.Payload)
			}

			if delta.Version > watermark {
				watermark = delta.Version
			}
		}

		if err := e.devices.SetPullVersion(deviceID, cfg.EntityType, watermark); err != nil {
			session.Errors = append(session.Errors, err.Error())
		}
	}

	return false
}

// resolvePullConflict handles a remote delta that collided with unsynced
// local state. The same strategy table applies with client and server roles
// reversed: the undelivered local operation (or, failing that, the local
// entity itself) plays the client.
func (e *Engine) resolvePullConflict(session *models.SyncSession, deviceID string, cfg models.SyncConfig, delta models.RemoteDelta, local models.SyncEntity) {
	op, hasOp := e.outbox.UndeliveredForEntity(delta.EntityType, delta.EntityID)
	if !hasOp {
		// The pending state has no live operation (e.g. it already failed
		// permanently); synthesize one so the resolver sees the local side.
		op = models.Operation{
			ID:         e.ids.Generate(),
			Type:       models.OperationUpsert,
			EntityType: delta.EntityType,
			EntityID:   delta.EntityID,
			Payload:    local.Payload,
			Version:    local.Version,
			DeviceID:   deviceID,
			MaxRetries: cfg.MaxRetries,
			CreatedAt:  local.LocalModifiedAt,
		}
	}

	res := e.resolver.Resolve(op, delta, cfg.ConflictStrategy)
	if !res.AutoResolved {
		if !hasOp {
			// Park the synthetic operation in the outbox so the deferred
			// conflict stays visible and manually resolvable.
			enqueued, err := e.outbox.Enqueue(op)
			if err != nil {
				session.Errors = append(session.Errors, err.Error())
			} else {
				op, hasOp = enqueued, true
			}
		}
		if hasOp {
			if err := e.outbox.MarkConflict(op.ID, res); err != nil {
				session.Errors = append(session.Errors, err.Error())
			}
		}
		if err := e.entities.SetStatus(delta.EntityType, delta.EntityID, models.EntityStatusConflict); err != nil {
			session.Errors = append(session.Errors, err.Error())
		}
		session.ConflictsDeferred++
		return
	}

	if payloadsEqual(res.ResolvedData, delta.Payload) {
		// Server won: the local edit is discarded in favour of the delta.
		_, err := e.entities.ApplyResolution(delta.EntityType, delta.EntityID, delta.Payload,
			local.Version, delta.Version, delta.ModifiedAt, false)
		if err != nil {
			session.Errors = append(session.Errors, err.Error())
			return
		}
		if hasOp {
			if err := e.outbox.RecordResolution(op.ID, res); err != nil {
				session.Errors = append(session.Errors, err.Error())
				return
			}
			if err := e.outbox.MarkCompleted(op.ID); err != nil {
				session.Errors = append(session.Errors, err.Error())
				return
			}
		}
		session.ConflictsResolved++
		session.DeltasPulled++
		return
	}

	// Client contributed: keep the resolved payload locally as a pending
	// change on top of the server version and line the operation up for the
	// next push.
	_, err := e.entities.ApplyResolution(delta.EntityType, delta.EntityID, res.ResolvedData,
		local.Version, delta.Version, delta.ModifiedAt, true)
	if err != nil {
		session.Errors = append(session.Errors, err.Error())
		return
	}
	if hasOp {
		if _, err := e.outbox.Resubmit(op.ID, res.ResolvedData, delta.Version+1, &res); err != nil {
			session.Errors = append(session.Errors, err.Error())
			return
		}
	}
	session.ConflictsResolved++
}

func payloadsEqual(a, b map[string]any) bool {
	ca, errA := utils.Checksum(a)
	cb, errB := utils.Checksum(b)
	return errA == nil && errB == nil && ca == cb
}

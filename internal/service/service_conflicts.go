// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"fmt"

	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/models"
)

// ResolveConflictManually settles a deferred conflict with an explicit
// choice. "server" adopts the server snapshot locally and completes the
// operation without a re-push. "client" re-submits the client payload on top
// of the server version; "custom" does the same with a caller-supplied
// payload. Returns true when a re-push was queued.
//
// Fails with store.ErrOperationNotConflicted unless the operation is parked
// in the conflict state.
func (e *Engine) ResolveConflictManually(operationID string, choice models.ManualChoice, customPayload map[string]any) (bool, error) {
	op, err := e.outbox.Get(operationID)
	if err != nil {
		return false, fmt.Errorf("resolve conflict: %w", err)
	}
	if op.Status != models.OperationStatusConflict || op.Resolution == nil {
		return false, fmt.Errorf("operation %s: %w", operationID, store.ErrOperationNotConflicted)
	}

	res := *op.Resolution

	var payload map[string]any
	switch choice {
	case models.ManualChoiceClient:
		payload = res.ClientData
	case models.ManualChoiceServer:
		payload = res.ServerData
	case models.ManualChoiceCustom:
		if customPayload == nil {
			return false, fmt.Errorf("choice %q: %w", choice, ErrCustomPayloadRequired)
		}
		payload = customPayload
	default:
		return false, fmt.Errorf("choice %q: %w", choice, ErrInvalidResolutionChoice)
	}

	local, err := e.entities.Get(op.EntityType, op.EntityID)
	if err != nil {
		return false, fmt.Errorf("resolve conflict: %w", err)
	}

	now := e.clock.Now()
	res.ResolvedData = payload
	res.AutoResolved = false
	res.ResolvedBy = "manual:" + string(choice)
	res.ResolvedAt = &now

	if choice == models.ManualChoiceServer {
		// Server adopted as-is: the local edit is discarded and nothing
		// needs delivering.
		_, err = e.entities.ApplyResolution(op.EntityType, op.EntityID, payload,
			local.Version, res.ServerVersion, res.ServerModifiedAt, false)
		if err != nil {
			return false, fmt.Errorf("resolve conflict: %w", err)
		}
		if err := e.outbox.MarkCompleted(operationID); err != nil {
			return false, fmt.Errorf("resolve conflict: %w", err)
		}

		e.log.Info().
			Str("operation_id", operationID).
			Str("choice", string(choice)).
			Msg("conflict resolved manually")

		return false, nil
	}

	// Client or custom payload wins: keep it locally as a pending change on
	// top of the server version and queue the re-push.
	_, err = e.entities.ApplyResolution(op.EntityType, op.EntityID, payload,
		local.Version, res.ServerVersion, now, true)
	if err != nil {
		return false, fmt.Errorf("resolve conflict: %w", err)
	}
	if _, err := e.outbox.Resubmit(operationID, payload, res.ServerVersion+1, &res); err != nil {
		return false, fmt.Errorf("resolve conflict: %w", err)
	}

	e.log.Info().
		Str("operation_id", operationID).
		Str("choice", string(choice)).
		Msg("conflict resolved manually, re-push queued")

	return true, nil
}

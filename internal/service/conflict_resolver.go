// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

// strategyResolver is the concrete implementation of ConflictResolver. All
// non-manual paths are pure functions of the operation and the server
// snapshot; the injected clock only stamps ResolvedAt.
type strategyResolver struct {
	clock utils.Clock
}

// NewConflictResolver constructs a ConflictResolver driven by clock.
func NewConflictResolver(clock utils.Clock) ConflictResolver {
	return &strategyResolver{clock: clock}
}

// Resolve implements ConflictResolver.
//
// Strategy semantics:
//   - client_wins: the operation payload wins unconditionally.
//   - server_wins: the server snapshot wins unconditionally.
//   - latest_wins: the later write wins, comparing the operation's creation
//     time against the server's last-modified time. Equal timestamps fall
//     back to server_wins so repeated resolution stays deterministic.
//   - merge: shallow field-wise merge with server fields as the base,
//     overwritten by any field present in the client payload
//     (last-writer-per-field).
//   - manual: no automatic resolution; the record is returned with
//     AutoResolved=false and no resolved payload, to be completed via
//     ResolveConflictManually.
//
// Unknown strategies are treated as manual, which is the safe direction:
// nothing is overwritten without an explicit decision.
func (r *strategyResolver) Resolve(op models.Operation, server models.RemoteDelta, strategy models.ConflictStrategy) models.ConflictResolution {
	res := models.ConflictResolution{
		OperationID:      op.ID,
		Strategy:         strategy,
		ClientData:       op.Payload,
		ServerData:       server.Payload,
		ServerVersion:    server.Version,
		ServerModifiedAt: server.ModifiedAt,
		DetectedAt:       r.clock.Now(),
	}

	switch strategy {
	case models.StrategyClientWins:
		res.ResolvedData = op.Payload

	case models.StrategyServerWins:
		res.ResolvedData = server.Payload

	case models.StrategyLatestWins:
		if op.CreatedAt.After(server.ModifiedAt) {
			res.ResolvedData = op.Payload
		} else {
			res.ResolvedData = server.Payload
		}

	case models.StrategyMerge:
		res.ResolvedData = mergePayloads(server.Payload, op.Payload)

	case models.StrategyManual:
		return res

	default:
		res.Strategy = models.StrategyManual
		return res
	}

	now := r.clock.Now()
	res.AutoResolved = true
	res.ResolvedBy = string(strategy)
	res.ResolvedAt = &now

	return res
}

// mergePayloads performs the shallow last-writer-per-field merge: every
// server field is kept unless the client payload carries the same key.
func mergePayloads(server, client map[string]any) map[string]any {
	merged := make(map[string]any, len(server)+len(client))
	for k, v := range server {
		merged[k] = v
	}
	for k, v := range client {
		merged[k] = v
	}
	return merged
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

// Package adapter abstracts the remote peer (the server of record) behind a
// transport-agnostic interface. The sync orchestrator is written against
// [RemotePeer]; the HTTP implementation talks to a real backend while the
// in-memory implementation simulates one deterministically for tests and
// standalone runs.
package adapter

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_remote_peer.go -package=mock

import (
	"context"

	"github.com/alertaid/syncengine/models"
)

// RemotePeer is the abstract transport to the server of record. All calls
// are bounded by ctx; a deadline expiry is treated as a transient failure
// subject to the outbox retry policy.
type RemotePeer interface {
	// Push delivers one operation. Redelivery of an operation ID the peer
	// has already accepted must be acknowledged with AlreadyApplied instead
	// of re-applying the mutation. A version mismatch is reported as
	// ErrVersionConflict.
	Push(ctx context.Context, op models.Operation) (models.PushAck, error)

	// Pull returns up to limit deltas of the given entity type with a
	// version strictly greater than sinceVersion, in ascending version
	// order.
	Pull(ctx context.Context, entityType string, sinceVersion int64, limit int) ([]models.RemoteDelta, error)

	// Fetch returns the peer's current state of one entity, used to obtain
	// the server snapshot when a push conflicts.
	Fetch(ctx context.Context, entityType, entityID string) (models.RemoteDelta, error)
}

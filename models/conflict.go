// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// ConflictStrategy selects the policy used to resolve divergent writes to
// the same entity. A strategy is configured per entity type.
type ConflictStrategy string

const (
	// StrategyClientWins keeps the client payload unconditionally.
	StrategyClientWins ConflictStrategy = "client_wins"

	// StrategyServerWins keeps the server payload unconditionally.
	StrategyServerWins ConflictStrategy = "server_wins"

	// StrategyLatestWins keeps whichever write carries the later timestamp.
	// Equal timestamps fall back to server_wins for determinism.
	StrategyLatestWins ConflictStrategy = "latest_wins"

	// StrategyMerge performs a shallow field-wise merge: server fields as
	// the base, overwritten by any field present in the client payload.
	StrategyMerge ConflictStrategy = "merge"

	// StrategyManual defers resolution to an external caller via
	// ResolveConflictManually.
	StrategyManual ConflictStrategy = "manual"
)

// ConflictResolution captures a detected conflict between a pending local
// operation and the server state, and — once resolved — the outcome.
type ConflictResolution struct {
	OperationID string           `json:"operation_id"`
	Strategy    ConflictStrategy `json:"strategy"`

	// ClientData is the local payload that collided.
	ClientData map[string]any `json:"client_data"`

	// ServerData is the remote payload at the moment the conflict was
	// detected.
	ServerData map[string]any `json:"server_data"`

	// ServerVersion and ServerModifiedAt snapshot the remote entity
	// metadata the resolution was computed against.
	ServerVersion    int64     `json:"server_version"`
	ServerModifiedAt time.Time `json:"server_modified_at"`

	// ResolvedData is the winning payload. Nil while the conflict is
	// deferred for manual resolution.
	ResolvedData map[string]any `json:"resolved_data,omitempty"`

	// AutoResolved is false when Strategy is manual and the conflict still
	// needs external input.
	AutoResolved bool `json:"auto_resolved"`

	// ResolvedBy identifies the resolver: the strategy name for automatic
	// resolutions, or the acting user for manual ones.
	ResolvedBy string     `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	DetectedAt time.Time `json:"detected_at"`
}

// ManualChoice selects the winning side of a manual conflict resolution.
type ManualChoice string

const (
	ManualChoiceClient ManualChoice = "client"
	ManualChoiceServer ManualChoice = "server"
	ManualChoiceCustom ManualChoice = "custom"
)

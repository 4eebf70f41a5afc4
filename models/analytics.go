// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package models

import "time"

// SyncAnalytics aggregates engine activity over a reporting window.
type SyncAnalytics struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	TotalOperations int `json:"total_operations"`

	OperationsByStatus map[OperationStatus]int `json:"operations_by_status"`

	// OperationsByType is keyed by operation type (create, update, delete,
	// upsert); OperationsByEntityType by the entity type the operation
	// targets (alert, shelter, ...).
	OperationsByType       map[string]int `json:"operations_by_type"`
	OperationsByEntityType map[string]int `json:"operations_by_entity_type"`
	OperationsByDevice     map[string]int `json:"operations_by_device"`

	SessionsCompleted  int           `json:"sessions_completed"`
	SessionsErrored    int           `json:"sessions_errored"`
	AvgSessionDuration time.Duration `json:"avg_session_duration"`

	ConflictsResolved int `json:"conflicts_resolved"`
	ConflictsDeferred int `json:"conflicts_deferred"`

	// ConflictsByStrategy counts detected conflicts by the strategy that
	// handled them, deferred manual conflicts included.
	ConflictsByStrategy map[ConflictStrategy]int `json:"conflicts_by_strategy"`

	EventsPublished int   `json:"events_published"`
	BytesTransferred int64 `json:"bytes_transferred"`
}

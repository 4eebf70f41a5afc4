// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"time"

	"github.com/alertaid/syncengine/models"
)

// GetAnalytics aggregates sync activity over the trailing period. A
// non-positive period covers everything retained.
func (e *Engine) GetAnalytics(period time.Duration) models.SyncAnalytics {
	now := e.clock.Now()
	start := time.Time{}
	if period > 0 {
		start = now.Add(-period)
	}

	analytics := models.SyncAnalytics{
		PeriodStart:            start,
		PeriodEnd:              now,
		OperationsByStatus:     make(map[models.OperationStatus]int),
		OperationsByType:       make(map[string]int),
		OperationsByEntityType: make(map[string]int),
		OperationsByDevice:     make(map[string]int),
		ConflictsByStrategy:    make(map[models.ConflictStrategy]int),
	}

	for _, op := range e.outbox.Snapshot() {
		if op.CreatedAt.Before(start) {
			continue
		}
		analytics.TotalOperations++
		analytics.OperationsByStatus[op.Status]++
		analytics.OperationsByType[string(op.Type)]++
		analytics.OperationsByEntityType[op.EntityType]++
		analytics.OperationsByDevice[op.DeviceID]++
		if op.Resolution != nil {
			analytics.ConflictsByStrategy[op.Resolution.Strategy]++
		}
	}

	var totalDuration time.Duration
	var finished int
	for _, session := range e.sessionsSince(start) {
		switch session.Status {
		case models.SessionCompleted:
			analytics.SessionsCompleted++
		case models.SessionError:
			analytics.SessionsErrored++
		}
		analytics.ConflictsResolved += session.ConflictsResolved
		analytics.ConflictsDeferred += session.ConflictsDeferred
		analytics.BytesTransferred += session.BytesTransferred

		if d := session.Duration(); d > 0 {
			totalDuration += d
			finished++
		}
	}
	if finished > 0 {
		analytics.AvgSessionDuration = totalDuration / time.Duration(finished)
	}

	for _, ev := range e.events.List(models.EventFilter{}, 0) {
		if !ev.CreatedAt.Before(start) {
			analytics.EventsPublished++
		}
	}

	return analytics
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package store

import (
	"sync"

	"github.com/alertaid/syncengine/models"
)

// EventLog retains a bounded, age-ordered buffer of change events for
// polling consumers. Overflow evicts the oldest events first. Event content
// is immutable once appended; only the propagation flag is flipped in place
// when the change reaches the server of record.
type EventLog struct {
	mu       sync.RWMutex
	capacity int
	events   []models.ChangeEvent
	appended int64
}

// NewEventLog constructs an EventLog holding at most capacity events.
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = 1
	}
	return &EventLog{capacity: capacity}
}

// Append records ev, evicting the oldest event if the buffer is full.
func (l *EventLog) Append(ev models.ChangeEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) == l.capacity {
		copy(l.events, l.events[1:])
		l.events = l.events[:l.capacity-1]
	}
	l.events = append(l.events, ev)
	l.appended++
}

// List returns up to limit events matching filter, most recent first.
// limit <= 0 means no limit.
func (l *EventLog) List(filter models.EventFilter, limit int) []models.ChangeEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.ChangeEvent
	for i := len(l.events) - 1; i >= 0; i-- {
		if !filter.Matches(l.events[i]) {
			continue
		}
		out = append(out, l.events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}

	return out
}

// MarkPropagated flags the entity's retained events at or below version as
// acknowledged by the server of record. Events produced by local edits newer
// than the acknowledged version stay unpropagated.
func (l *EventLog) MarkPropagated(entityType, entityID string, version int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.events {
		ev := &l.events[i]
		if ev.EntityType == entityType && ev.EntityID == entityID && ev.Version <= version {
			ev.Propagated = true
		}
	}
}

// TotalAppended returns the number of events ever appended, eviction
// included.
func (l *EventLog) TotalAppended() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.appended
}

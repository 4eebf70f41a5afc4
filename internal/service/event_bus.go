// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"sync"

	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/models"
)

// EventBus fans out change events to subscribers. Delivery is at-most-once
// per subscriber per event: a subscriber whose buffered channel is full
// simply misses the event (consumers needing durability poll
// GetChangeEvents instead). Delivery failures are never retried.
type EventBus struct {
	log     *logger.Logger
	bufSize int

	mu     sync.RWMutex
	nextID int64
	subs   map[int64]*subscription
	closed bool
}

type subscription struct {
	filter models.EventFilter
	ch     chan models.ChangeEvent
}

// NewEventBus constructs an EventBus whose subscriber channels buffer up to
// bufSize events each.
func NewEventBus(bufSize int, log *logger.Logger) *EventBus {
	if bufSize <= 0 {
		bufSize = 1
	}
	return &EventBus{
		log:     log,
		bufSize: bufSize,
		subs:    make(map[int64]*subscription),
	}
}

// Subscribe registers a subscriber for events matching filter and returns
// the delivery channel plus an unsubscribe handle. The channel is closed on
// unsubscribe and when the bus shuts down.
func (b *EventBus) Subscribe(filter models.EventFilter) (<-chan models.ChangeEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan models.ChangeEvent)
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++

	sub := &subscription{
		filter: filter,
		ch:     make(chan models.ChangeEvent, b.bufSize),
	}
	b.subs[id] = sub

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if s, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.ch)
			}
		})
	}

	return sub.ch, unsubscribe
}

// Publish offers ev to every matching subscriber without blocking. An event
// that does not fit a subscriber's buffer is dropped for that subscriber.
func (b *EventBus) Publish(ev models.ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, sub := range b.subs {
		if !sub.filter.Matches(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			b.log.Warn().
				Str("event_id", ev.ID).
				Str("entity", ev.EntityType+"/"+ev.EntityID).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

// Close shuts the bus down and closes every subscriber channel.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.ch)
	}
}

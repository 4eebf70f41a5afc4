// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/models"
)

func TestEventBus_DeliversMatchingEvents(t *testing.T) {
	bus := NewEventBus(4, logger.Nop())
	defer bus.Close()

	all, unsubAll := bus.Subscribe(models.EventFilter{})
	defer unsubAll()

	alerts, unsubAlerts := bus.Subscribe(models.EventFilter{EntityType: "alert"})
	defer unsubAlerts()

	bus.Publish(models.ChangeEvent{ID: "ev-1", EntityType: "alert", Kind: models.EventCreated})
	bus.Publish(models.ChangeEvent{ID: "ev-2", EntityType: "shelter", Kind: models.EventUpdated})

	assert.Equal(t, "ev-1", (<-all).ID)
	assert.Equal(t, "ev-2", (<-all).ID)

	got := <-alerts
	assert.Equal(t, "ev-1", got.ID)
	select {
	case ev := <-alerts:
		t.Fatalf("alert subscriber must not see shelter events, got %s", ev.ID)
	default:
	}
}

func TestEventBus_FullSubscriberDropsEvents(t *testing.T) {
	bus := NewEventBus(2, logger.Nop())
	defer bus.Close()

	ch, unsub := bus.Subscribe(models.EventFilter{})
	defer unsub()

	// Nobody reads; only the first two events fit the buffer.
	for i := 0; i < 5; i++ {
		bus.Publish(models.ChangeEvent{ID: fmt.Sprintf("ev-%d", i)})
	}

	assert.Equal(t, "ev-0", (<-ch).ID)
	assert.Equal(t, "ev-1", (<-ch).ID)
	select {
	case ev := <-ch:
		t.Fatalf("expected overflow events to be dropped, got %s", ev.ID)
	default:
	}
}

func TestEventBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus(2, logger.Nop())
	defer bus.Close()

	ch, unsub := bus.Subscribe(models.EventFilter{})

	unsub()
	unsub() // idempotent

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.Publish(models.ChangeEvent{ID: "ev-1"})
}

func TestEventBus_CloseClosesAllSubscribers(t *testing.T) {
	bus := NewEventBus(2, logger.Nop())

	first, _ := bus.Subscribe(models.EventFilter{})
	second, _ := bus.Subscribe(models.EventFilter{})

	bus.Close()
	bus.Close() // idempotent

	_, open := <-first
	require.False(t, open)
	_, open = <-second
	require.False(t, open)

	// A late subscriber gets an already-closed channel.
	late, _ := bus.Subscribe(models.EventFilter{})
	_, open = <-late
	assert.False(t, open)
}

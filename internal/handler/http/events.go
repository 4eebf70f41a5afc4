// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package http

import (
	"net/http"
	"strconv"

	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.EventFilter{
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Kind:       models.EventKind(q.Get("kind")),
		DeviceID:   q.Get("device_id"),
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events := h.engine.GetChangeEvents(filter, limit)

	utils.WriteJSON(w, map[string]any{
		"events": events,
		"length": len(events),
	}, http.StatusOK)
}

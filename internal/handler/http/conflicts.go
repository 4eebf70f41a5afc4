// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

func (h *Handler) listConflicts(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")

	conflicts := h.engine.GetConflicts(deviceID)

	utils.WriteJSON(w, map[string]any{
		"conflicts": conflicts,
		"length":    len(conflicts),
	}, http.StatusOK)
}

func (h *Handler) resolveConflict(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	operationID := chi.URLParam(r, "operationID")

	var body struct {
		Choice  models.ManualChoice `json:"choice"`
		Payload map[string]any      `json:"payload,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.resolveConflict").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	repush, err := h.engine.ResolveConflictManually(operationID, body.Choice, body.Payload)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.resolveConflict").Msg("error resolving conflict")
		http.Error(w, "error resolving conflict", statusFromError(err))
		return
	}

	utils.WriteJSON(w, map[string]bool{"repush_queued": repush}, http.StatusOK)
}

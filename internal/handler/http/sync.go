// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/service"
	"github.com/alertaid/syncengine/internal/utils"
	"github.com/alertaid/syncengine/models"
)

func (h *Handler) trackChange(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req service.TrackChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.trackChange").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	op, err := h.engine.TrackChange(req)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.trackChange").Msg("error tracking change")
		http.Error(w, "error tracking change", statusFromError(err))
		return
	}

	utils.WriteJSON(w, op, http.StatusCreated)
}

func (h *Handler) startSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)
	deviceID := chi.URLParam(r, "deviceID")

	var opts models.SyncOptions
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			log.Err(err).Str("func", "*Handler.startSync").Msg("invalid JSON was passed")
			http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
			return
		}
	}

	session, err := h.engine.StartSync(ctx, deviceID, opts)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.startSync").Msg("error starting sync session")
		http.Error(w, "error starting sync session", statusFromError(err))
		return
	}

	utils.WriteJSON(w, session, http.StatusOK)
}

func (h *Handler) abortSync(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceID")

	aborted := h.engine.AbortSync(deviceID)

	utils.WriteJSON(w, map[string]bool{"aborted": aborted}, http.StatusOK)
}

// listOperations serves the outbox views: pending (default), conflicted, or
// failed operations, optionally filtered by device and entity type.
func (h *Handler) listOperations(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	entityType := r.URL.Query().Get("entity_type")

	var ops []models.Operation
	switch status := r.URL.Query().Get("status"); status {
	case "", "pending":
		ops = h.engine.GetPendingOperations(deviceID, entityType)
	case "conflict":
		ops = h.engine.GetConflicts(deviceID)
	case "failed":
		ops = h.engine.GetFailedOperations(deviceID)
	default:
		http.Error(w, "unknown operation status filter", http.StatusBadRequest)
		return
	}

	utils.WriteJSON(w, map[string]any{
		"operations": ops,
		"length":     len(ops),
	}, http.StatusOK)
}

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

func (h *Handler) getSyncConfig(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	entityType := chi.URLParam(r, "entityType")

	cfg, err := h.engine.GetSyncConfig(entityType)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.getSyncConfig").Msg("error getting sync config")
		http.Error(w, "error getting sync config", statusFromError(err))
		return
	}

	utils.WriteJSON(w, cfg, http.StatusOK)
}

func (h *Handler) updateSyncConfig(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	entityType := chi.URLParam(r, "entityType")

	var patch models.SyncConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Err(err).Str("func", "*Handler.updateSyncConfig").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	cfg, err := h.engine.UpdateSyncConfig(entityType, patch)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.updateSyncConfig").Msg("error updating sync config")
		http.Error(w, "error updating sync config", statusFromError(err))
		return
	}

	utils.WriteJSON(w, cfg, http.StatusOK)
}

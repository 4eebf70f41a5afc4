// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package http

import (
	"encoding/json"
	"net/http"

	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/utils"
)

func (h *Handler) createPackage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var body struct {
		UserID      string   `json:"user_id"`
		DeviceID    string   `json:"device_id"`
		EntityTypes []string `json:"entity_types"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.createPackage").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	pkg, err := h.engine.CreateOfflinePackage(body.UserID, body.DeviceID, body.EntityTypes)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.createPackage").Msg("error creating offline package")
		http.Error(w, "error creating offline package", statusFromError(err))
		return
	}

	utils.WriteJSON(w, pkg, http.StatusCreated)
}

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

func (h *Handler) registerDevice(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var device models.Device
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
		log.Err(err).Str("func", "*Handler.registerDevice").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if device.DeviceID == "" {
		http.Error(w, "device_id is required", http.StatusBadRequest)
		return
	}

	state, err := h.engine.RegisterDevice(device)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.registerDevice").Msg("error registering device")
		http.Error(w, "error registering device", statusFromError(err))
		return
	}

	utils.WriteJSON(w, state, http.StatusCreated)
}

func (h *Handler) listDevices(w http.ResponseWriter, r *http.Request) {
	devices := h.engine.ListDevices()

	utils.WriteJSON(w, map[string]any{
		"devices": devices,
		"length":  len(devices),
	}, http.StatusOK)
}

func (h *Handler) getDevice(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	deviceID := chi.URLParam(r, "deviceID")

	state, err := h.engine.GetDevice(deviceID)
	if err != nil {
		log.Error().Err(err).Str("func", "*Handler.getDevice").Msg("error getting device")
		http.Error(w, "error getting device", statusFromError(err))
		return
	}

	utils.WriteJSON(w, state, http.StatusOK)
}

func (h *Handler) updateDeviceStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	deviceID := chi.URLParam(r, "deviceID")

	var body struct {
		IsOnline bool `json:"is_online"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.Err(err).Str("func", "*Handler.updateDeviceStatus").Msg("invalid JSON was passed")
		http.Error(w, "invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.engine.UpdateDeviceOnlineStatus(deviceID, body.IsOnline); err != nil {
		log.Error().Err(err).Str("func", "*Handler.updateDeviceStatus").Msg("error updating device status")
		http.Error(w, "error updating device status", statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) archiveDevice(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	deviceID := chi.URLParam(r, "deviceID")

	if err := h.engine.ArchiveDevice(deviceID); err != nil {
		log.Error().Err(err).Str("func", "*Handler.archiveDevice").Msg("error archiving device")
		http.Error(w, "error archiving device", statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package http

import (
	"net/http"
	"time"

	"github.com/alertaid/syncengine/internal/utils"
)

func (h *Handler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	var period time.Duration
	if raw := r.URL.Query().Get("period"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			http.Error(w, "invalid period", http.StatusBadRequest)
			return
		}
		period = parsed
	}

	analytics := h.engine.GetAnalytics(period)

	utils.WriteJSON(w, analytics, http.StatusOK)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	router.Route("/api/sync", func(r chi.Router) {
		r.Post("/changes", h.trackChange)

		r.Route("/devices", func(r chi.Router) {
			r.Post("/", h.registerDevice)
			r.Get("/", h.listDevices)
			r.Get("/{deviceID}", h.getDevice)
			r.Patch("/{deviceID}/status", h.updateDeviceStatus)
			r.Delete("/{deviceID}", h.archiveDevice)

			r.Post("/{deviceID}/sessions", h.startSync)
			r.Delete("/{deviceID}/sessions", h.abortSync)
		})

		r.Get("/operations", h.listOperations)

		r.Get("/conflicts", h.listConflicts)
		r.Post("/conflicts/{operationID}/resolution", h.resolveConflict)

		r.Get("/events", h.listEvents)

		r.Post("/packages", h.createPackage)

		r.Get("/configs/{entityType}", h.getSyncConfig)
		r.Patch("/configs/{entityType}", h.updateSyncConfig)

		r.Get("/analytics", h.getAnalytics)
	})

	return router
}

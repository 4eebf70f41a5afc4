// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package http

import (
	"errors"
	"net/http"

	"github.com/alertaid/syncengine/internal/service"
	"github.com/alertaid/syncengine/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrUnknownEntityType:       http.StatusNotFound,
	service.ErrSyncDisabled:            http.StatusUnprocessableEntity,
	service.ErrInvalidOperationType:    http.StatusBadRequest,
	service.ErrInvalidDirection:        http.StatusBadRequest,
	service.ErrInvalidStrategy:         http.StatusBadRequest,
	service.ErrNoEntityTypes:           http.StatusBadRequest,
	service.ErrOfflineNotAllowed:       http.StatusUnprocessableEntity,
	service.ErrInvalidResolutionChoice: http.StatusBadRequest,
	service.ErrCustomPayloadRequired:   http.StatusBadRequest,

	store.ErrEntityNotFound:         http.StatusNotFound,
	store.ErrOperationNotFound:      http.StatusNotFound,
	store.ErrOperationNotConflicted: http.StatusConflict,
	store.ErrDeviceNotFound:         http.StatusNotFound,
	store.ErrVersionConflict:        http.StatusConflict,
	store.ErrSyncInProgress:         http.StatusConflict,

	store.ErrOpeningDatabase: http.StatusInternalServerError,
	store.ErrWritingRecord:   http.StatusInternalServerError,
	store.ErrReadingRecord:   http.StatusInternalServerError,
	store.ErrDecodingRecord:  http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

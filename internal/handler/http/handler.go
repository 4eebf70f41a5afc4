// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package http

import (
	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/service"
)

type Handler struct {
	engine *service.Engine

	logger *logger.Logger
}

func NewHandler(engine *service.Engine, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		engine: engine,
		logger: logger,
	}
}

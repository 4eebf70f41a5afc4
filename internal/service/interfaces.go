// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package service

import (
	"github.com/alertaid/syncengine/models"
)

// ConflictResolver decides the winning payload when a pending local
// operation collides with diverging server state. Implementations must be
// deterministic and idempotent: resolving the same conflict twice with the
// same inputs yields the same resolved payload.
type ConflictResolver interface {
	Resolve(op models.Operation, server models.RemoteDelta, strategy models.ConflictStrategy) models.ConflictResolution
}

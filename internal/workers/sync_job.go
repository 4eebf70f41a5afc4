// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

// Package workers hosts the background jobs of the sync engine.
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/internal/service"
	"github.com/alertaid/syncengine/internal/store"
	"github.com/alertaid/syncengine/models"
)

// SyncJob periodically runs a sync session for every online, non-archived
// device. The job is idle until Start is called.
type SyncJob struct {
	engine *service.Engine
	log    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSyncJob(engine *service.Engine, log *logger.Logger) *SyncJob {
	return &SyncJob{engine: engine, log: log}
}

// Start stops any previously running job, then launches a background
// goroutine that syncs every eligible device once per interval. If interval
// is zero or negative it defaults to 5 minutes. The goroutine exits when ctx
// is cancelled or Stop is called.
func (j *SyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.syncAll(jobCtx)
			}
		}
	}()
}

// Stop cancels the background goroutine's context and blocks until it has
// fully exited. Safe to call when the job is not running (no-op in that
// case).
func (j *SyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}

func (j *SyncJob) syncAll(ctx context.Context) {
	for _, device := range j.engine.ListDevices() {
		if ctx.Err() != nil {
			return
		}
		if !device.IsOnline || device.Archived {
			continue
		}

		_, err := j.engine.StartSync(ctx, device.DeviceID, models.SyncOptions{})
		switch {
		case err == nil:
		case errors.Is(err, store.ErrSyncInProgress):
			// A caller-driven session is running; skip this round.
		default:
			j.log.Error().Err(err).Str("device_id", device.DeviceID).Msg("scheduled sync failed")
		}
	}
}

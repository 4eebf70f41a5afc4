// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertaid/syncengine/internal/config"
	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/models"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain host gets http scheme", raw: "sync.alertaid.io:8443", want: "http://sync.alertaid.io:8443"},
		{name: "explicit scheme is kept", raw: "https://sync.alertaid.io", want: "https://sync.alertaid.io"},
		{name: "trailing slash is trimmed", raw: "https://sync.alertaid.io/", want: "https://sync.alertaid.io"},
		{name: "surrounding whitespace is trimmed", raw: "  https://sync.alertaid.io  ", want: "https://sync.alertaid.io"},
		{name: "empty address fails", raw: "   ", wantErr: true},
		{name: "scheme without host fails", raw: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestHTTPPeer(t *testing.T, handler http.Handler) RemotePeer {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	peer, err := NewHTTPRemotePeer(config.Remote{
		HTTPAddress:    srv.URL,
		RequestTimeout: 2 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)

	return peer
}

func TestHTTPRemotePeer_Push(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	peer := newTestHTTPPeer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/sync/operations", r.URL.Path)

		var op models.Operation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&op))
		require.Equal(t, "op-1", op.ID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.PushAck{NewVersion: op.Version, ModifiedAt: now})
	}))

	ack, err := peer.Push(context.Background(), models.Operation{ID: "op-1", Version: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), ack.NewVersion)
	assert.True(t, ack.ModifiedAt.Equal(now))
}

func TestHTTPRemotePeer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "409 is a version conflict", status: http.StatusConflict, wantErr: ErrVersionConflict},
		{name: "404 is not found", status: http.StatusNotFound, wantErr: ErrRemoteNotFound},
		{name: "503 is transient", status: http.StatusServiceUnavailable, wantErr: ErrTemporarilyUnavailable},
		{name: "429 is transient", status: http.StatusTooManyRequests, wantErr: ErrTemporarilyUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peer := newTestHTTPPeer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := peer.Push(context.Background(), models.Operation{ID: "op-1"})
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = peer.Fetch(context.Background(), "alert", "alert-1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHTTPRemotePeer_Pull(t *testing.T) {
	peer := newTestHTTPPeer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sync/deltas/alert", r.URL.Path)
		require.Equal(t, "4", r.URL.Query().Get("since"))
		require.Equal(t, "50", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]models.RemoteDelta{
			{EntityType: "alert", EntityID: "alert-1", Version: 5},
			{EntityType: "alert", EntityID: "alert-2", Version: 6},
		})
	}))

	deltas, err := peer.Pull(context.Background(), "alert", 4, 50)
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, int64(5), deltas[0].Version)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alertaid/syncengine/internal/config"
	"github.com/alertaid/syncengine/internal/logger"
	"github.com/alertaid/syncengine/models"
	"github.com/go-resty/resty/v2"
)

type httpRemotePeer struct {
	client *resty.Client

	logger *logger.Logger
}

// NewHTTPRemotePeer constructs an HTTP/REST implementation of [RemotePeer].
// It normalises and validates the base URL from remoteCfg.HTTPAddress and
// configures the underlying resty client with the resolved base URL and
// request timeout.
//
// Returns an error if remoteCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPRemotePeer(remoteCfg config.Remote, logger *logger.Logger) (RemotePeer, error) {
	baseURL, err := normalizeBaseURL(remoteCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid remote http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(remoteCfg.RequestTimeout)

	return &httpRemotePeer{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Push implements [RemotePeer]. It POSTs the operation to
// POST /api/sync/operations and decodes the acknowledgement. A 409 response
// maps to ErrVersionConflict so the orchestrator can route the operation
// through the conflict resolver.
func (h *httpRemotePeer) Push(ctx context.Context, op models.Operation) (models.PushAck, error) {
	var ack models.PushAck

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(op).
		SetResult(&ack).
		Post("/api/sync/operations")
	if err != nil {
		return models.PushAck{}, fmt.Errorf("push operation %s: %w: %w", op.ID, ErrTemporarilyUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PushAck{}, fmt.Errorf("push operation %s: %w", op.ID, err)
	}

	return ack, nil
}

// Pull implements [RemotePeer]. It GETs
// /api/sync/deltas/{entityType}?since={version}&limit={limit} and decodes
// the delta batch.
func (h *httpRemotePeer) Pull(ctx context.Context, entityType string, sinceVersion int64, limit int) ([]models.RemoteDelta, error) {
	var deltas []models.RemoteDelta

	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("since", strconv.FormatInt(sinceVersion, 10)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&deltas).
		Get("/api/sync/deltas/" + url.PathEscape(entityType))
	if err != nil {
		return nil, fmt.Errorf("pull %s deltas: %w: %w", entityType, ErrTemporarilyUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, fmt.Errorf("pull %s deltas: %w", entityType, err)
	}

	return deltas, nil
}

// Fetch implements [RemotePeer]. It GETs
// /api/sync/entities/{entityType}/{entityID} and decodes the single entity
// snapshot.
func (h *httpRemotePeer) Fetch(ctx context.Context, entityType, entityID string) (models.RemoteDelta, error) {
	var delta models.RemoteDelta

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&delta).
		Get("/api/sync/entities/" + url.PathEscape(entityType) + "/" + url.PathEscape(entityID))
	if err != nil {
		return models.RemoteDelta{}, fmt.Errorf("fetch %s/%s: %w: %w", entityType, entityID, ErrTemporarilyUnavailable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RemoteDelta{}, fmt.Errorf("fetch %s/%s: %w", entityType, entityID, err)
	}

	return delta, nil
}

func mapHTTPError(resp *resty.Response) error {
	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusConflict:
		return ErrVersionConflict
	case resp.StatusCode() == http.StatusNotFound:
		return ErrRemoteNotFound
	case resp.StatusCode() >= http.StatusInternalServerError,
		resp.StatusCode() == http.StatusTooManyRequests,
		resp.StatusCode() == http.StatusRequestTimeout:
		return fmt.Errorf("%w: status %d", ErrTemporarilyUnavailable, resp.StatusCode())
	default:
		return fmt.Errorf("remote peer returned status %d: %s", resp.StatusCode(), resp.String())
	}
}

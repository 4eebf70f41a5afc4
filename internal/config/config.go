// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the sync
// engine. It aggregates all sub-configurations and is populated by merging
// values from environment variables and an optional JSON file, with
// hard-coded defaults filling the gaps.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Engine holds the sync-engine tunables: retry budgets, buffer sizes,
	// and offline package lifetime.
	Engine Engine `envPrefix:"ENGINE_"`

	// Storage holds configuration for the persistent key-value backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds network address and timeout settings for the HTTP API.
	Server Server `envPrefix:"SERVER_"`

	// Remote holds configuration for the remote peer transport.
	Remote Remote `envPrefix:"REMOTE_"`

	// Workers holds configuration for the background sync job.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables.
	// Populated via the CONFIG environment variable.
	JSONFilePath string `env:"CONFIG"`
}

// Engine groups the behavioural tunables of the sync engine itself.
type Engine struct {
	// DefaultMaxRetries bounds transient-failure redelivery for operations
	// whose entity-type config does not override it.
	DefaultMaxRetries int `env:"DEFAULT_MAX_RETRIES"`

	// DefaultBatchSize bounds the number of deltas requested per pull for
	// entity types that do not override it.
	DefaultBatchSize int `env:"DEFAULT_BATCH_SIZE"`

	// EventBufferSize caps the bounded change-event buffer; overflow evicts
	// the oldest events first.
	EventBufferSize int `env:"EVENT_BUFFER_SIZE"`

	// SubscriberBufferSize caps each subscriber's delivery channel. A full
	// channel drops the event for that subscriber (at-most-once delivery).
	SubscriberBufferSize int `env:"SUBSCRIBER_BUFFER_SIZE"`

	// PackageTTL is how long offline packages stay valid after creation.
	PackageTTL time.Duration `env:"PACKAGE_TTL"`

	// SessionHistorySize caps how many finished sessions are retained for
	// analytics.
	SessionHistorySize int `env:"SESSION_HISTORY_SIZE"`
}

// Storage groups the configuration for the persistent key-value backend.
type Storage struct {
	// BoltPath is the path of the bbolt database file. Empty means the
	// engine runs on the in-memory backend (state is lost on restart).
	BoltPath string `env:"BOLT_PATH"`
}

// Server holds the HTTP API listener settings.
type Server struct {
	// HTTPAddress is the listen address of the sync HTTP API.
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds each inbound API request.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// Remote holds the remote peer transport settings.
type Remote struct {
	// HTTPAddress is the base URL of the server of record. Empty means the
	// engine runs against the in-memory simulated peer.
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds each push/pull call; expiry is treated as a
	// transient failure subject to the outbox retry policy.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds background sync job settings.
type Workers struct {
	// SyncInterval is how often the background job opens a sync session for
	// each registered online device. Zero disables the job.
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// defaultConfig returns the baseline configuration merged underneath env and
// JSON values.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Engine: Engine{
			DefaultMaxRetries:    3,
			DefaultBatchSize:     100,
			EventBufferSize:      1000,
			SubscriberBufferSize: 64,
			PackageTTL:           24 * time.Hour,
			SessionHistorySize:   256,
		},
		Server: Server{
			HTTPAddress:     ":8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Remote: Remote{
			RequestTimeout: 15 * time.Second,
		},
		Workers: Workers{
			SyncInterval: 5 * time.Minute,
		},
	}
}

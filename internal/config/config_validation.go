// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Alert Aid Authors

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// engine invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Engine.DefaultMaxRetries < 0 ||
		cfg.Engine.DefaultBatchSize <= 0 ||
		cfg.Engine.EventBufferSize <= 0 ||
		cfg.Engine.SubscriberBufferSize <= 0 ||
		cfg.Engine.PackageTTL <= 0 {
		return ErrInvalidEngineConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout == 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.Remote.RequestTimeout == 0 {
		return ErrInvalidRemoteConfigs
	}

	return nil
}

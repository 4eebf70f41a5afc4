package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidEngineConfigs indicates invalid engine settings (for
	// example, a non-positive retry budget or buffer size).
	ErrInvalidEngineConfigs = errors.New("invalid engine configuration")
	// ErrInvalidServerConfigs indicates invalid HTTP API settings
	// (for example, missing listen address).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidRemoteConfigs indicates invalid remote peer settings
	// (for example, zero request timeout).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
)

package adapter

import "errors"

// Transport-level sentinel errors. Callers should use [errors.Is]; the
// orchestrator's retry and conflict paths branch on these values.
var (
	// ErrVersionConflict is returned when the peer rejects a push because
	// the operation's expected version does not match the peer's current
	// entity version.
	ErrVersionConflict = errors.New("remote version conflict")

	// ErrTemporarilyUnavailable is returned for retryable transport
	// failures (network errors, timeouts, 5xx responses). The outbox retry
	// policy applies.
	ErrTemporarilyUnavailable = errors.New("remote peer temporarily unavailable")

	// ErrRemoteNotFound is returned when the peer does not know the
	// requested entity.
	ErrRemoteNotFound = errors.New("entity not found on remote peer")

	// ErrSecurityViolation is reserved for transport-layer misuse
	// (tampered checksums, unauthorized device identity). Not raised by
	// the current implementations.
	ErrSecurityViolation = errors.New("transport security violation")
)

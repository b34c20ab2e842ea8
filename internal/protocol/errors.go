package protocol

import "errors"

// Error taxonomy for the sync engine. Handlers classify failures with
// these sentinels via fmt.Errorf("...: %w", ...); the transport decides
// what each kind means for the connection (none of them terminate it).
var (
	// ErrProtocol marks a malformed or unknown message. Logged, dropped,
	// connection stays open.
	ErrProtocol = errors.New("protocol_error")

	// ErrPermissionDenied marks an operation by an actor lacking the
	// required role. Rejected, actor notified.
	ErrPermissionDenied = errors.New("permission_denied")

	// ErrInvalidReference marks an id that does not parse or does not
	// resolve to an existing entity. Rejected with the offending id
	// echoed back.
	ErrInvalidReference = errors.New("invalid_reference")

	// ErrInvariantViolation marks an update that would break a
	// structural invariant (e.g. removing the last resolved owner).
	// Rejected before any mutation is applied.
	ErrInvariantViolation = errors.New("invariant_violation")

	// ErrTransportFailure marks a dropped connection. Triggers presence
	// cleanup; surfaced to other clients only as a membership change.
	ErrTransportFailure = errors.New("transport_failure")
)

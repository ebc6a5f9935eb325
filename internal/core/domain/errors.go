package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCaseNotFound indicates the requested case does not exist.
	// Fatal for an analysis pass.
	ErrCaseNotFound = errors.New("case not found")

	// ErrAuthRequired indicates the caller is not authorised for the
	// case. Fatal, returned immediately.
	ErrAuthRequired = errors.New("authentication required")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOracleUnavailable indicates the AI extraction oracle is not
	// configured or failed. Never surfaced to callers: the analyser
	// recovers by substituting the deterministic extractor.
	ErrOracleUnavailable = errors.New("extraction oracle unavailable")

	// ErrFactConflict indicates a Supersede lost an optimistic-version
	// race and may be reissued by the caller.
	ErrFactConflict = errors.New("concurrent fact write conflict")

	// ErrFrozenCase indicates a status transition was attempted on a
	// frozen case.
	ErrFrozenCase = errors.New("case status is frozen")
)

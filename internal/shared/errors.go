package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrSequenceViolation indicates a payment selection skipping earlier pending periods.
	ErrSequenceViolation = errors.New("payment sequence violated")
	// ErrInvalidState indicates an operation attempted on an item outside its required source state.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrConfigurationConflict indicates a reconfiguration that would orphan settled data.
	ErrConfigurationConflict = errors.New("configuration conflict")
	// ErrWindowExpired indicates a signature attempted after the window cutoff.
	ErrWindowExpired = errors.New("signature window expired")
	// ErrValidationRequired indicates an approve/reject call with an empty or mismatched batch.
	ErrValidationRequired = errors.New("validation batch required")
	// ErrCollaboratorUnavailable wraps persistence or storage collaborator failures.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

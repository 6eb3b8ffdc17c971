package ledger

import "errors"

// Failure taxonomy for the enrollment and payment core. Every rejected
// mutation leaves all entities in their pre-call state; none of these is
// fatal to the process. Services wrap them with context via fmt.Errorf and
// %w so callers can match with errors.Is.
var (
	// Validation - malformed input, recoverable by resubmitting corrected data
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrMissingOwner  = errors.New("payment owner reference is invalid")
	ErrInvalidWindow = errors.New("end time must be after start time")

	// Capacity - course or shared workspace is full
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// Conflict - race or stale client state; re-fetch and retry
	ErrDuplicateEnrollment = errors.New("student already enrolled in course")
	ErrOverpayment         = errors.New("payment exceeds remaining amount")
	ErrSlotUnavailable     = errors.New("time slot unavailable")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOwnerSettled        = errors.New("obligation already settled or cancelled")

	// State machine violation - not retried automatically
	ErrInvalidTransition = errors.New("status transition not permitted")

	// Referenced entity missing or inactive
	ErrNotFound = errors.New("not found")
)

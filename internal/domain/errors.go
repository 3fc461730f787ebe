package domain

import "errors"

// Business-rule errors returned by the ledger. Handlers translate them
// into user-facing messages; none of them are fatal.
var (
	// ErrAlreadyStarted: the day is already open (or already closed);
	// a repeated start is informational, not a failure.
	ErrAlreadyStarted = errors.New("shift already started")

	// ErrNoActiveShift: stop requested with no open shift to close.
	ErrNoActiveShift = errors.New("no active shift")

	// ErrInvalidLeadCount: lead credits must be positive integers.
	ErrInvalidLeadCount = errors.New("invalid lead count")

	// ErrRecordNotFound: no ledger row for the requested key. Used
	// internally to trigger stub creation, never surfaced to users.
	ErrRecordNotFound = errors.New("record not found")

	// ErrStaffNotFound: no staff profile for the given identity.
	ErrStaffNotFound = errors.New("staff not found")

	// ErrStorageUnavailable: the store kept failing after bounded
	// retries; the operation may be retried by the caller later.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

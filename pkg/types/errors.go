package types

import "errors"

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrIncidentNotFound = errors.New("incident not found")

	// Raised by the store when the database unique constraint rejects a
	// racing duplicate that slipped past the validation pre-check.
	ErrDuplicateIDNumber = errors.New("id number already registered")
	ErrDuplicateEmail    = errors.New("email already registered")
)

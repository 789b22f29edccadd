package db

import "errors"

// Domain-level database error sentinels.
var (
	// Field errors
	ErrFieldNotFound      = errors.New("field not found")
	ErrBlankField         = errors.New("field name is blank")
	ErrDuplicateCanonical = errors.New("canonical field name already exists")

	// Listing errors
	ErrListingNotFound = errors.New("listing not found")
	ErrBlankListingID  = errors.New("listing id is blank")

	// Observation errors
	ErrObservationNotFound = errors.New("observation not found")
)

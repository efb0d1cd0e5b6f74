package model

import "errors"

// Common errors used across the application
var (
	// Roster errors
	ErrPlayerNotFound = errors.New("player not found")

	// Scoring errors
	ErrCatchOutOfRange = errors.New("catch count out of range")

	// Identity resolution errors
	ErrIdentityInvalid     = errors.New("identity invalid or ineligible")
	ErrIdentityUnavailable = errors.New("identity lookup unavailable")

	// Scan errors
	ErrResolutionInFlight = errors.New("a resolution is already in flight")

	// Import errors
	ErrImportMalformed = errors.New("import file malformed")
)

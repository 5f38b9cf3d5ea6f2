package model

import "errors"

// Common errors used across the application
var (
	// Storage errors
	ErrEntryNotFound = errors.New("storage entry not found")

	// Identity errors
	ErrFingerprintUnavailable = errors.New("device fingerprint unavailable")
	ErrInvalidDisplayName     = errors.New("display name must not be empty")

	// Player errors
	ErrUnknownIntent = errors.New("unknown player intent")
)

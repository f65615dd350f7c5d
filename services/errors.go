package services

import "errors"

// Shared service-level errors, mapped to HTTP statuses in the handlers.
var (
	// Lookup failures
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrFixtureNotFound    = errors.New("fixture not found")

	// Validation and business rules
	ErrPlayerUsernameRequired = errors.New("autodarts username is required")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrNegativeLegs           = errors.New("leg counts must not be negative")

	// State conflicts
	ErrFixtureAlreadyCompleted = errors.New("fixture already completed")
	ErrPlayerUsernameConflict  = errors.New("autodarts username already registered")
	ErrPlayerInUse             = errors.New("player is registered in a tournament")

	// Auth
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Avatar uploads need object storage configured
	ErrUploaderDisabled = errors.New("file storage is not configured")
)

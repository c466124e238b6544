package domain

import (
	"errors"
)

// Sentinel errors for common domain failures
// Use with errors.Is() for checking and fmt.Errorf("%w", ...) for wrapping with context

var (
	// ErrNotAuthenticated indicates an operation requires an authenticated session
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionDestroyed indicates the session was destroyed and cannot be reused
	ErrSessionDestroyed = errors.New("session destroyed")

	// ErrInvalidRetryPolicy indicates a retry policy violates its bounds
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")

	// ErrEmptyName indicates a user or recipe name is empty
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrMalformedResult indicates a backend result is neither Ok nor Err
	ErrMalformedResult = errors.New("result must carry exactly one of Ok or Err")
)

package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrUnavailable indicates upstream had no data for this cycle (all attempts failed)
	ErrUnavailable = errors.New("upstream data unavailable")

	// ErrUserNotFound indicates the handle does not resolve to an upstream user
	ErrUserNotFound = errors.New("user not found")

	// ErrPlayerNotFound indicates no catalog player has the requested display name
	ErrPlayerNotFound = errors.New("player not found")
)

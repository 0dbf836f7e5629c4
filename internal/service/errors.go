package service

import "errors"

// Service errors returned by the credential operations.
// The API layer maps both to HTTP 403 Forbidden.
var (
	// ErrDuplicateUser indicates the username is already registered. It is
	// returned whether the clash is seen before the insert or reported by the
	// store's uniqueness constraint.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrInvalidCredentials indicates a login with an unknown username or a
	// wrong password. Callers are not told which.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
